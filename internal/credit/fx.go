package credit

import (
	"github.com/smallbiznis/rosterly/internal/credit/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("credit",
	fx.Provide(repository.Provide),
)
