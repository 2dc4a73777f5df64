package domain

import "fmt"

// TypeStrategy captures event-type specific behavior. Variants are
// registered at wiring time and injected, never looked up by name at
// runtime.
type TypeStrategy interface {
	Type() EventType
	// PaymentDescription is the ledger line description for a payment
	// against an event of this type.
	PaymentDescription(event *Event) string
}

type individualStrategy struct{}

func (individualStrategy) Type() EventType { return TypeIndividual }

func (individualStrategy) PaymentDescription(event *Event) string {
	return fmt.Sprintf("individual registration for %s", event.Name)
}

type teamStrategy struct{}

func (teamStrategy) Type() EventType { return TypeTeam }

func (teamStrategy) PaymentDescription(event *Event) string {
	return fmt.Sprintf("team registration for %s", event.Name)
}

// StrategyRegistry resolves the strategy for an event's type.
type StrategyRegistry struct {
	byType map[EventType]TypeStrategy
}

func NewStrategyRegistry(strategies ...TypeStrategy) *StrategyRegistry {
	r := &StrategyRegistry{byType: make(map[EventType]TypeStrategy, len(strategies))}
	for _, s := range strategies {
		r.byType[s.Type()] = s
	}
	return r
}

// DefaultStrategies returns the built-in event type variants.
func DefaultStrategies() []TypeStrategy {
	return []TypeStrategy{individualStrategy{}, teamStrategy{}}
}

// For returns the strategy for the event's type, falling back to the
// individual variant.
func (r *StrategyRegistry) For(event *Event) TypeStrategy {
	if s, ok := r.byType[event.EventType]; ok {
		return s
	}
	return individualStrategy{}
}
