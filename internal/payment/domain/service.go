package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Pay appends a positive ledger entry after re-checking capacity for
	// the registration's roster category.
	Pay(ctx context.Context, registrationID snowflake.ID, req PayRequest) (*Payment, error)
	// RedeemCredit applies min(requested, registration balance, credit
	// balance) from the credit to the registration, atomically.
	RedeemCredit(ctx context.Context, registrationID, creditID snowflake.ID, requestedAmount int64) (*Payment, error)
	// Refund appends a negative entry mirroring the original payment and
	// bumps its refunded_amount. An online refund runs the processor call
	// inside the transaction; processor failure rolls everything back.
	Refund(ctx context.Context, paymentID snowflake.ID, req RefundRequest) (*Payment, error)
	// CreditBack refunds into an affiliate-scoped credit instead of the
	// processor.
	CreditBack(ctx context.Context, paymentID snowflake.ID, req CreditBackRequest) (*Payment, error)
	// Transfer moves min(requested, refundable, target balance) between
	// two registrations of the same affiliate as one atomic unit.
	Transfer(ctx context.Context, paymentID snowflake.ID, req TransferRequest) (*TransferResult, error)
	// ProcessGatewayReturn reconciles a processed-payment record from the
	// gateway into audit plus ledger rows; failure leaves the ledger
	// untouched.
	ProcessGatewayReturn(ctx context.Context, ret GatewayReturn) (*GatewayReturnResult, error)

	ListForRegistration(ctx context.Context, registrationID snowflake.ID) ([]Payment, error)
}

type PayRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentType   Type   `json:"payment_type"`
	Notes         string `json:"notes"`
}

type RefundRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	// Online asks for a processor-side refund through the audit
	// reference on the original payment.
	Online bool `json:"online"`
	// MarkCancelled moves the registration to cancelled once the refund
	// has landed.
	MarkCancelled bool `json:"mark_cancelled"`
}

type CreditBackRequest struct {
	Amount int64  `json:"amount"`
	Notes  string `json:"notes"`
}

type TransferRequest struct {
	ToRegistrationID snowflake.ID `json:"to_registration_id"`
	Amount           int64        `json:"amount"`
	Notes            string       `json:"notes"`
}

type TransferResult struct {
	Amount   int64    `json:"amount"`
	Outgoing *Payment `json:"outgoing"`
	Incoming *Payment `json:"incoming"`
}

type GatewayReturn struct {
	Success         bool                   `json:"success"`
	Provider        string                 `json:"provider"`
	OrderID         string                 `json:"order_id"`
	TransactionID   string                 `json:"transaction_id"`
	Amount          int64                  `json:"amount"`
	RegistrationIDs []snowflake.ID         `json:"registration_ids"`
	Payload         map[string]interface{} `json:"payload"`
}

type GatewayReturnResult struct {
	AuditID  snowflake.ID `json:"audit_id"`
	Payments []Payment    `json:"payments"`
}

var (
	ErrNotFound            = errors.New("payment_not_found")
	ErrAmountInvalid       = errors.New("amount_invalid")
	ErrNoBalance           = errors.New("no_balance")
	ErrAlreadySettled      = errors.New("already_settled")
	ErrGatewayRefundFailed = errors.New("gateway_refund_failed")
	ErrGatewayDeclined     = errors.New("gateway_declined")
	ErrNotUnpaid           = errors.New("target_not_unpaid")
	ErrAffiliateMismatch   = errors.New("affiliate_mismatch")
	ErrCapacityConflict    = errors.New("concurrent_capacity_conflict")
	ErrNoAuditReference    = errors.New("no_audit_reference")
)
