package gateway

import (
	"strings"

	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
)

// Registry resolves the processor a refund must go through by the
// provider recorded on the audit row.
type Registry struct {
	processors map[string]Processor
}

func NewRegistry(processors ...Processor) *Registry {
	registry := &Registry{processors: map[string]Processor{}}
	for _, processor := range processors {
		if processor == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(processor.Provider()))
		if provider == "" {
			continue
		}
		registry.processors[provider] = processor
	}
	return registry
}

func (r *Registry) For(provider string) (Processor, error) {
	if r == nil {
		return nil, paymentdomain.ErrNoAuditReference
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	processor, ok := r.processors[provider]
	if !ok {
		return nil, paymentdomain.ErrNoAuditReference
	}
	return processor, nil
}
