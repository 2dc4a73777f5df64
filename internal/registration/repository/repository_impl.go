package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() regdomain.Repository {
	return &repo{}
}

const registrationColumns = `id, event_id, person_id, price_id, status, created_at, modified_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reg *regdomain.Registration) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO registrations (id, event_id, person_id, price_id, status, created_at, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.ID,
		reg.EventID,
		reg.PersonID,
		reg.PriceID,
		reg.Status,
		reg.CreatedAt,
		reg.ModifiedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*regdomain.Registration, error) {
	return r.find(ctx, db, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*regdomain.Registration, error) {
	return r.find(ctx, db, id, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*regdomain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
	// sqlite has no row locks; the write is still guarded by the tx
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += ` FOR UPDATE`
	}

	var reg regdomain.Registration
	err := db.WithContext(ctx).Raw(query, id).Scan(&reg).Error
	if err != nil {
		return nil, err
	}
	if reg.ID == 0 {
		return nil, nil
	}
	return &reg, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM registrations WHERE id = ?`, id).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status regdomain.Status, modifiedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE registrations SET status = ?, modified_at = ? WHERE id = ?`,
		status,
		modifiedAt,
		id,
	).Error
}

func (r *repo) ListByPersonWithStatus(ctx context.Context, db *gorm.DB, personID snowflake.ID, statuses []string) ([]regdomain.Registration, error) {
	var items []regdomain.Registration
	err := db.WithContext(ctx).Raw(
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE person_id = ? AND status IN ?
		 ORDER BY created_at ASC, id ASC`,
		personID,
		statuses,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListWaiting(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]regdomain.Registration, error) {
	var items []regdomain.Registration
	err := db.WithContext(ctx).Raw(
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = ? AND status = 'waiting'
		 ORDER BY created_at ASC, id ASC`,
		eventID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListDelinquent(ctx context.Context, db *gorm.DB, affiliateID snowflake.ID, statuses []string) ([]regdomain.DelinquentRow, error) {
	var rows []regdomain.DelinquentRow
	err := db.WithContext(ctx).Raw(
		`SELECT r.id AS registration_id,
		        r.person_id AS person_id,
		        p.name AS person_name,
		        r.event_id AS event_id,
		        e.name AS event_name,
		        r.status AS status,
		        pr.total AS total,
		        COALESCE((SELECT SUM(amount) FROM payments pay WHERE pay.registration_id = r.id), 0) AS paid,
		        pr.total - COALESCE((SELECT SUM(amount) FROM payments pay WHERE pay.registration_id = r.id), 0) AS balance,
		        r.created_at AS created_at
		 FROM registrations r
		 JOIN events e ON e.id = r.event_id
		 JOIN people p ON p.id = r.person_id
		 JOIN prices pr ON pr.id = r.price_id
		 WHERE e.affiliate_id = ? AND r.status IN ?
		 ORDER BY r.created_at ASC, r.id ASC`,
		affiliateID,
		statuses,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) LedgerTotal(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE registration_id = ?`,
		registrationID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) LedgerCount(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM payments WHERE registration_id = ?`,
		registrationID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ExpireStale(ctx context.Context, db *gorm.DB, cutoff, now time.Time) (int, error) {
	expired := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := `SELECT id FROM registrations r
		 WHERE r.status = 'pending'
		   AND r.created_at < ?
		   AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.registration_id = r.id)`
		if tx.Dialector.Name() != "sqlite" {
			query += ` FOR UPDATE SKIP LOCKED`
		}

		var ids []snowflake.ID
		if err := tx.Raw(query, cutoff).Scan(&ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		// status guard keeps a concurrent sweep from double counting
		res := tx.Exec(
			`UPDATE registrations SET status = 'cancelled', modified_at = ?
			 WHERE id IN ? AND status = 'pending'`,
			now,
			ids,
		)
		if res.Error != nil {
			return res.Error
		}
		expired = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
