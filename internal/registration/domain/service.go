package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Unregister(ctx context.Context, registrationID snowflake.ID) error
	Get(ctx context.Context, registrationID snowflake.ID) (*Registration, error)
	// Checkout partitions the person's unpaid registrations into payable
	// items and blocked items with display reasons.
	Checkout(ctx context.Context, personID snowflake.ID) (*CheckoutResult, error)
	// Waiting lists the waiting-list registrations for an event in
	// arrival order. Promotion is a manual administrative action.
	Waiting(ctx context.Context, eventID snowflake.ID) ([]Registration, error)
	// Unpaid is the delinquent registrations report for the affiliate.
	Unpaid(ctx context.Context) ([]DelinquentRow, error)
	// ExpireReservations cancels stale unpaid holds. Invoked ahead of
	// every capacity-sensitive operation and periodically by the
	// scheduler; idempotent.
	ExpireReservations(ctx context.Context) (int, error)
}

type RegisterRequest struct {
	EventID  snowflake.ID `json:"event_id"`
	PersonID snowflake.ID `json:"person_id"`
	// PriceID is optional when the event has exactly one open price.
	PriceID snowflake.ID `json:"price_id"`
}

type RegisterResult struct {
	Registration  *Registration        `json:"registration"`
	Occupancy     eventdomain.Occupancy `json:"occupancy"`
	AutoCompleted bool                 `json:"auto_completed"`
	PaymentAmount int64                `json:"payment_amount,omitempty"`
}

type CheckoutResult struct {
	PersonID snowflake.ID   `json:"person_id"`
	Payable  []CheckoutItem `json:"payable"`
	Blocked  []CheckoutItem `json:"blocked"`
}

type CheckoutItem struct {
	Registration *Registration     `json:"registration"`
	Price        *pricedomain.Price `json:"price"`
	Paid         int64             `json:"paid"`
	Balance      int64             `json:"balance"`
	BlockedReason string           `json:"blocked_reason,omitempty"`
}

var (
	ErrNotFound         = errors.New("registration_not_found")
	ErrInvalidSelection = errors.New("invalid_selection")
	ErrAmbiguousPrice   = errors.New("ambiguous_price")
	ErrHasPayments      = errors.New("registration_has_payments")
	ErrCancelled        = errors.New("registration_cancelled")
	ErrNotEligible      = errors.New("not_eligible")
)
