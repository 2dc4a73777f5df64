package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Person is read-side reference data. The registration and payment paths
// never write to this row; credits are stored on their own aggregate so
// that granting one does not look like a profile change.
type Person struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	Name              string       `json:"name" gorm:"type:text;not null"`
	RosterDesignation string       `json:"roster_designation" gorm:"type:text;not null;default:open"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Person) TableName() string { return "people" }
