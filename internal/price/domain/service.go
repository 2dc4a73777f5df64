package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create adds a price tier to the event.
	Create(ctx context.Context, eventID snowflake.ID, req CreateRequest) (*Price, error)
	// CurrentForEvent lists the prices whose validity window is open now.
	CurrentForEvent(ctx context.Context, eventID snowflake.ID) ([]Price, error)
	// ForEvent lists every price of the event, open or not.
	ForEvent(ctx context.Context, eventID snowflake.ID) ([]Price, error)
	// Get fetches one price, failing when it belongs to another event.
	Get(ctx context.Context, eventID, priceID snowflake.ID) (*Price, error)
}

type CreateRequest struct {
	Name                string              `json:"name"`
	Open                time.Time           `json:"open"`
	Close               time.Time           `json:"close"`
	Total               int64               `json:"total"`
	MinimumDeposit      int64               `json:"minimum_deposit"`
	AllowDeposit        bool                `json:"allow_deposit"`
	DepositOnly         bool                `json:"deposit_only"`
	OnlinePaymentOption OnlinePaymentOption `json:"online_payment_option"`
	AllowLatePayment    bool                `json:"allow_late_payment"`
}

var (
	ErrNotFound      = errors.New("price_not_found")
	ErrInvalidEvent  = errors.New("invalid_event")
	ErrInvalidName   = errors.New("invalid_price_name")
	ErrInvalidWindow = errors.New("invalid_price_window")
	ErrInvalidTotal  = errors.New("invalid_price_total")
	ErrInvalidOption = errors.New("invalid_payment_option")
)
