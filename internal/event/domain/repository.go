package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	// FindByIDForUpdate locks the event row for the caller's transaction.
	// Capacity admissions serialize on this lock so two writers cannot
	// both observe the same free slot.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	// List returns up to limit events after the cursor id, oldest first.
	List(ctx context.Context, db *gorm.DB, affiliateID, afterID snowflake.ID, limit int) ([]Event, error)
	// CountActive counts registrations occupying a capacity slot for the
	// roster category, optionally excluding one registration.
	CountActive(ctx context.Context, db *gorm.DB, eventID snowflake.ID, category RosterCategory, excluding snowflake.ID) (int, error)
}
