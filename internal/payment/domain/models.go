package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Type string

var (
	TypeFull             Type = "full"
	TypeRemainingBalance Type = "remaining_balance"
	TypeInstallment      Type = "installment"
	TypeDeposit          Type = "deposit"
	TypeCreditRedeemed   Type = "credit_redeemed"
	TypeTransfer         Type = "transfer"
)

// Payment is one signed ledger entry against a registration. Positive
// amounts are money in; refunds, credits back and transfers out are
// negative entries, never edits of earlier rows.
type Payment struct {
	ID                  snowflake.ID  `json:"id" gorm:"primaryKey"`
	RegistrationID      snowflake.ID  `json:"registration_id" gorm:"column:registration_id;not null;index"`
	PaymentType         Type          `json:"payment_type" gorm:"type:text;not null"`
	Amount              int64         `json:"amount" gorm:"not null"`
	RefundedAmount      int64         `json:"refunded_amount" gorm:"not null;default:0"`
	PaymentMethod       string        `json:"payment_method" gorm:"type:text;not null;default:''"`
	Notes               string        `json:"notes" gorm:"type:text;not null;default:''"`
	RegistrationAuditID *snowflake.ID `json:"registration_audit_id,omitempty" gorm:"column:registration_audit_id"`
	CreatedAt           time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

// Refundable is the amount still available for refund, credit back or
// transfer out of this entry.
func (p *Payment) Refundable() int64 {
	if p.Amount <= 0 {
		return 0
	}
	return p.Amount - p.RefundedAmount
}

// RegistrationAudit is the opaque processor transaction record a ledger
// entry may reference. Never interpreted, only stored.
type RegistrationAudit struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider      string         `json:"provider" gorm:"type:text;not null"`
	OrderID       string         `json:"order_id" gorm:"type:text;not null;default:''"`
	TransactionID string         `json:"transaction_id" gorm:"type:text;not null;default:''"`
	ChargeTotal   int64          `json:"charge_total" gorm:"not null;default:0"`
	Payload       datatypes.JSON `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RegistrationAudit) TableName() string { return "registration_audits" }

// InferType classifies a positive entry the way payers think about it:
// the full price in one go, the remainder of a started plan, the first
// of several installments, or a deposit.
func InferType(priceTotal, paidBefore, amount int64) Type {
	switch {
	case amount == priceTotal:
		return TypeFull
	case amount == priceTotal-paidBefore:
		return TypeRemainingBalance
	case paidBefore == 0:
		return TypeDeposit
	default:
		return TypeInstallment
	}
}
