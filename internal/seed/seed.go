package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/smallbiznis/rosterly/internal/affiliate/domain"
	"gorm.io/gorm"
)

const defaultAffiliateName = "Main"

// EnsureDefaultAffiliate seeds the default affiliate for startup
// bootstrap so a single-tenant install works with no setup.
func EnsureDefaultAffiliate(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureAffiliateTx(ctx, tx, node.Generate(), defaultAffiliateName)
		return err
	})
}

// EnsureDefaultAffiliateWithID seeds the default affiliate under a
// fixed identifier, for installs that pin the tenant ID in config.
func EnsureDefaultAffiliateWithID(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if id == 0 {
		return errors.New("seed affiliate id is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureAffiliateTx(ctx, tx, snowflake.ID(id), defaultAffiliateName)
		return err
	})
}

func ensureAffiliateTx(ctx context.Context, tx *gorm.DB, id snowflake.ID, name string) (*affiliatedomain.Affiliate, error) {
	var existing affiliatedomain.Affiliate
	err := tx.WithContext(ctx).
		Raw(`SELECT id, name, active, created_at FROM affiliates ORDER BY created_at ASC LIMIT 1`).
		Scan(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	affiliate := affiliatedomain.Affiliate{
		ID:        id,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	err = tx.WithContext(ctx).Exec(
		`INSERT INTO affiliates (id, name, active, created_at) VALUES (?, ?, ?, ?)`,
		affiliate.ID, affiliate.Name, affiliate.Active, affiliate.CreatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return &affiliate, nil
}
