package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertEntry(ctx context.Context, db *gorm.DB, entry *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	// FindByIDForUpdate locks the ledger row for the caller's transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	UpdateRefunded(ctx context.Context, db *gorm.DB, id snowflake.ID, refundedAmount int64) error
	ListByRegistration(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) ([]Payment, error)
	FindAuditByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RegistrationAudit, error)
	InsertAudit(ctx context.Context, db *gorm.DB, audit *RegistrationAudit) error
}
