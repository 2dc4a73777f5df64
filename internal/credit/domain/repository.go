package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, credit *Credit) error
	// FindByIDForUpdate locks the credit row for the caller's transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, affiliateID, id snowflake.ID) (*Credit, error)
	FindByID(ctx context.Context, db *gorm.DB, affiliateID, id snowflake.ID) (*Credit, error)
	ListUnused(ctx context.Context, db *gorm.DB, affiliateID, personID snowflake.ID) ([]Credit, error)
	UpdateUsage(ctx context.Context, db *gorm.DB, credit *Credit) error
}
