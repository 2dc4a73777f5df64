package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	creditdomain "github.com/smallbiznis/rosterly/internal/credit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() creditdomain.Repository {
	return &repo{}
}

const creditColumns = `id, affiliate_id, person_id, amount, amount_used, notes, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *creditdomain.Credit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO credits (id, affiliate_id, person_id, amount, amount_used, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.AffiliateID,
		c.PersonID,
		c.Amount,
		c.AmountUsed,
		c.Notes,
		c.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, affiliateID, id snowflake.ID) (*creditdomain.Credit, error) {
	return r.find(ctx, db, affiliateID, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, affiliateID, id snowflake.ID) (*creditdomain.Credit, error) {
	return r.find(ctx, db, affiliateID, id, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, affiliateID, id snowflake.ID, forUpdate bool) (*creditdomain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE affiliate_id = ? AND id = ?`
	// sqlite has no row locks; the write is still guarded by the tx
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += ` FOR UPDATE`
	}

	var c creditdomain.Credit
	err := db.WithContext(ctx).Raw(query, affiliateID, id).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListUnused(ctx context.Context, db *gorm.DB, affiliateID, personID snowflake.ID) ([]creditdomain.Credit, error) {
	var items []creditdomain.Credit
	err := db.WithContext(ctx).Raw(
		`SELECT `+creditColumns+` FROM credits
		 WHERE affiliate_id = ? AND person_id = ? AND amount_used < amount
		 ORDER BY created_at ASC, id ASC`,
		affiliateID,
		personID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateUsage(ctx context.Context, db *gorm.DB, c *creditdomain.Credit) error {
	return db.WithContext(ctx).Exec(
		`UPDATE credits SET amount_used = ?, notes = ? WHERE id = ?`,
		c.AmountUsed,
		c.Notes,
		c.ID,
	).Error
}
