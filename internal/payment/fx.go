package payment

import (
	"github.com/smallbiznis/rosterly/internal/payment/gateway"
	"github.com/smallbiznis/rosterly/internal/payment/repository"
	"github.com/smallbiznis/rosterly/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(provideGateways),
)

func provideGateways() *gateway.Registry {
	return gateway.NewRegistry(gateway.NewManualProcessor())
}
