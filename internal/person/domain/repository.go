package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, person *Person) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Person, error)
}
