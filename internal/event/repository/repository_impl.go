package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() eventdomain.Repository {
	return &repo{}
}

const eventColumns = `id, affiliate_id, event_type, name, slug, open, close,
	open_cap, women_cap, question_count, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *eventdomain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO events (
			id, affiliate_id, event_type, name, slug, open, close,
			open_cap, women_cap, question_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.AffiliateID,
		e.EventType,
		e.Name,
		e.Slug,
		e.Open,
		e.Close,
		e.OpenCap,
		e.WomenCap,
		e.QuestionCount,
		e.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*eventdomain.Event, error) {
	return r.findByID(ctx, db, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*eventdomain.Event, error) {
	return r.findByID(ctx, db, id, true)
}

func (r *repo) findByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*eventdomain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += ` FOR UPDATE`
	}

	var e eventdomain.Event
	err := db.WithContext(ctx).Raw(query, id).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, nil
	}
	return &e, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, affiliateID, afterID snowflake.ID, limit int) ([]eventdomain.Event, error) {
	var items []eventdomain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT `+eventColumns+` FROM events
		 WHERE affiliate_id = ? AND id > ?
		 ORDER BY id ASC LIMIT ?`,
		affiliateID,
		afterID,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB, eventID snowflake.ID, category eventdomain.RosterCategory, excluding snowflake.ID) (int, error) {
	var count int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM registrations r
		 JOIN people p ON p.id = r.person_id
		 WHERE r.event_id = ?
		   AND r.status IN ('confirmed', 'partially_paid')
		   AND p.roster_designation = ?
		   AND r.id <> ?`,
		eventID,
		category,
		excluding,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
