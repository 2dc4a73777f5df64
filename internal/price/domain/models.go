package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OnlinePaymentOption controls how much (if anything) may be collected
// online for a price tier.
type OnlinePaymentOption string

var (
	OptionNone            OnlinePaymentOption = "none"
	OptionMinimumDeposit  OnlinePaymentOption = "minimum_deposit"
	OptionSpecificDeposit OnlinePaymentOption = "specific_deposit"
	OptionNoMinimum       OnlinePaymentOption = "no_minimum"
	OptionNoPayment       OnlinePaymentOption = "no_payment"
)

// Price is one payable tier of an event. Amounts are minor units.
type Price struct {
	ID                  snowflake.ID        `json:"id" gorm:"primaryKey"`
	EventID             snowflake.ID        `json:"event_id" gorm:"column:event_id;not null;index"`
	Name                string              `json:"name" gorm:"type:text;not null"`
	Open                time.Time           `json:"open" gorm:"not null"`
	Close               time.Time           `json:"close" gorm:"not null"`
	Total               int64               `json:"total" gorm:"not null;default:0"`
	MinimumDeposit      int64               `json:"minimum_deposit" gorm:"not null;default:0"`
	AllowDeposit        bool                `json:"allow_deposit" gorm:"not null;default:false"`
	DepositOnly         bool                `json:"deposit_only" gorm:"not null;default:false"`
	OnlinePaymentOption OnlinePaymentOption `json:"online_payment_option" gorm:"type:text;not null;default:none"`
	AllowLatePayment    bool                `json:"allow_late_payment" gorm:"not null;default:false"`
	CreatedAt           time.Time           `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Price) TableName() string { return "prices" }

// OpenAt reports whether the validity window [open, close) contains now.
func (p *Price) OpenAt(now time.Time) bool {
	return !now.Before(p.Open) && now.Before(p.Close)
}

// ClosedAt reports whether the payment deadline has passed.
func (p *Price) ClosedAt(now time.Time) bool {
	return !now.Before(p.Close)
}

// RequiresPaymentDecision reports whether the payer must choose an
// amount before the registration can be completed.
func (p *Price) RequiresPaymentDecision() bool {
	switch p.OnlinePaymentOption {
	case OptionMinimumDeposit, OptionSpecificDeposit, OptionNoMinimum:
		return true
	default:
		return false
	}
}
