package event

import (
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	"github.com/smallbiznis/rosterly/internal/event/repository"
	"github.com/smallbiznis/rosterly/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func() *eventdomain.StrategyRegistry {
		return eventdomain.NewStrategyRegistry(eventdomain.DefaultStrategies()...)
	}),
)
