package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

var (
	StatusPending       Status = "pending"
	StatusWaiting       Status = "waiting"
	StatusConfirmed     Status = "confirmed"
	StatusPartiallyPaid Status = "partially_paid"
	StatusCancelled     Status = "cancelled"
)

// Registration ties a person to an event at a selected price. The status
// column is a cache; it is recomputed from the ledger and price inside
// every transaction that mutates the ledger.
type Registration struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	EventID    snowflake.ID `json:"event_id" gorm:"column:event_id;not null;index"`
	PersonID   snowflake.ID `json:"person_id" gorm:"column:person_id;not null;index"`
	PriceID    snowflake.ID `json:"price_id" gorm:"column:price_id;not null"`
	Status     Status       `json:"status" gorm:"type:text;not null;default:pending"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	ModifiedAt time.Time    `json:"modified_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Registration) TableName() string { return "registrations" }

// Occupies reports whether the status consumes a capacity slot.
func (s Status) Occupies() bool {
	return s == StatusConfirmed || s == StatusPartiallyPaid
}

// DeriveStatus recomputes the cached status from the ledger total.
// Cancelled and waiting are sticky: cancellation is terminal and
// waiting-list promotion is an explicit administrative action, never a
// side effect of payment math.
func DeriveStatus(current Status, priceTotal, totalPaid int64) Status {
	switch current {
	case StatusCancelled:
		return StatusCancelled
	case StatusWaiting:
		return StatusWaiting
	}
	if totalPaid >= priceTotal {
		return StatusConfirmed
	}
	if totalPaid > 0 {
		return StatusPartiallyPaid
	}
	return StatusPending
}
