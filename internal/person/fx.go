package person

import (
	"github.com/smallbiznis/rosterly/internal/person/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("person",
	fx.Provide(repository.Provide),
)
