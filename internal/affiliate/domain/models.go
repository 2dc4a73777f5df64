package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Affiliate is the tenant scope isolating events, prices and credits.
type Affiliate struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Affiliate) TableName() string { return "affiliates" }
