package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Credit is prepaid balance a person can spend on future registrations
// within one affiliate. Mutated only by the payment ledger, inside the
// ledger's transaction; granting or spending a credit never writes the
// person row.
type Credit struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	AffiliateID snowflake.ID `json:"affiliate_id" gorm:"column:affiliate_id;not null;index"`
	PersonID    snowflake.ID `json:"person_id" gorm:"column:person_id;not null;index"`
	Amount      int64        `json:"amount" gorm:"not null"`
	AmountUsed  int64        `json:"amount_used" gorm:"not null;default:0"`
	Notes       string       `json:"notes" gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Credit) TableName() string { return "credits" }

// Balance is the spendable remainder.
func (c *Credit) Balance() int64 { return c.Amount - c.AmountUsed }

// Apply consumes amount from the credit and appends an audit line to the
// notes trail. Guards the amount_used <= amount invariant.
func (c *Credit) Apply(amount int64, note string, at time.Time) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if c.AmountUsed+amount > c.Amount {
		return ErrExceedsBalance
	}
	c.AmountUsed += amount
	line := fmt.Sprintf("%s: applied %d (%s)", at.UTC().Format(time.RFC3339), amount, strings.TrimSpace(note))
	if c.Notes == "" {
		c.Notes = line
	} else {
		c.Notes = c.Notes + "\n" + line
	}
	return nil
}

var (
	ErrNotFound       = errors.New("credit_not_found")
	ErrInvalidAmount  = errors.New("invalid_credit_amount")
	ErrExceedsBalance = errors.New("credit_exceeds_balance")
)
