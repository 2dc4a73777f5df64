package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, price *Price) error
	FindByID(ctx context.Context, db *gorm.DB, eventID, id snowflake.ID) (*Price, error)
	ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]Price, error)
	ListOpenByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID, now time.Time) ([]Price, error)
}
