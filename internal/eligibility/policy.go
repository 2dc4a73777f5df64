package eligibility

import (
	"context"

	"github.com/smallbiznis/rosterly/internal/clock"
	"github.com/smallbiznis/rosterly/internal/config"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	"go.uber.org/fx"
)

// Check is one admission question posed before a registration is
// admitted or a payment authorized.
type Check struct {
	Event    *eventdomain.Event
	Category eventdomain.RosterCategory
	Price    *pricedomain.Price
	Waiting  bool
}

// Decision is the collaborator's verdict. Reason is human-readable and
// only set when denied.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Policy is consulted by the registration lifecycle; the rules
// themselves live outside this subsystem.
type Policy interface {
	CanRegister(ctx context.Context, check Check) (Decision, error)
}

type defaultPolicy struct {
	clock  clock.Clock
	holder *config.RegistrationConfigHolder
}

func NewDefaultPolicy(clk clock.Clock, holder *config.RegistrationConfigHolder) Policy {
	return &defaultPolicy{clock: clk, holder: holder}
}

func (p *defaultPolicy) CanRegister(ctx context.Context, check Check) (Decision, error) {
	_ = ctx
	now := p.clock.Now()

	if check.Event != nil {
		if now.Before(check.Event.Open) {
			return Decision{Reason: "registration has not opened yet"}, nil
		}
		if !now.Before(check.Event.Close) {
			return Decision{Reason: "registration has closed"}, nil
		}
	}

	if check.Price != nil && !check.Price.OpenAt(now) && !check.Price.AllowLatePayment {
		return Decision{Reason: "the selected price is no longer available"}, nil
	}

	return Decision{Allowed: true}, nil
}

var Module = fx.Module("eligibility",
	fx.Provide(NewDefaultPolicy),
)
