package gateway

import (
	"context"

	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
)

// Processor is the ledger-side contract with the payment gateway. The
// concrete client library lives outside this subsystem; the ledger only
// needs to push a refund back through the processor that took the money.
type Processor interface {
	Provider() string
	// Refund asks the processor to return amount against the original
	// transaction. Called inside the refund transaction with a bounded
	// context; an error aborts the whole refund.
	Refund(ctx context.Context, audit *paymentdomain.RegistrationAudit, amount int64) error
}

// manualProcessor is the no-gateway deployment: refunds are handled
// out of band, so the processor call always succeeds locally.
type manualProcessor struct{}

func NewManualProcessor() Processor {
	return manualProcessor{}
}

func (manualProcessor) Provider() string { return "manual" }

func (manualProcessor) Refund(ctx context.Context, audit *paymentdomain.RegistrationAudit, amount int64) error {
	_ = ctx
	_ = audit
	_ = amount
	return nil
}
