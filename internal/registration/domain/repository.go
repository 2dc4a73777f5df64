package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reg *Registration) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Registration, error)
	// FindByIDForUpdate locks the registration row for the caller's
	// transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Registration, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, modifiedAt time.Time) error

	ListByPersonWithStatus(ctx context.Context, db *gorm.DB, personID snowflake.ID, statuses []string) ([]Registration, error)
	ListWaiting(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]Registration, error)
	ListDelinquent(ctx context.Context, db *gorm.DB, affiliateID snowflake.ID, statuses []string) ([]DelinquentRow, error)

	// LedgerTotal sums signed ledger amounts for the registration.
	LedgerTotal(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) (int64, error)
	// LedgerCount counts ledger entries for the registration.
	LedgerCount(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) (int64, error)

	// ExpireStale cancels pending, ledger-empty registrations created
	// before the cutoff. Runs its own transaction; rows are claimed with
	// SKIP LOCKED where the dialect supports it and the update is guarded
	// by status, so concurrent sweeps are safe.
	ExpireStale(ctx context.Context, db *gorm.DB, cutoff, now time.Time) (int, error)
}

// DelinquentRow is one line of the unpaid registrations report.
type DelinquentRow struct {
	RegistrationID snowflake.ID `json:"registration_id"`
	PersonID       snowflake.ID `json:"person_id"`
	PersonName     string       `json:"person_name"`
	EventID        snowflake.ID `json:"event_id"`
	EventName      string       `json:"event_name"`
	Status         Status       `json:"status"`
	Total          int64        `json:"total"`
	Paid           int64        `json:"paid"`
	Balance        int64        `json:"balance"`
	CreatedAt      time.Time    `json:"created_at"`
}
