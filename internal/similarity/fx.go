package similarity

import (
	"github.com/loopwire/partnerly/internal/similarity/repository"
	"github.com/loopwire/partnerly/internal/similarity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("similarity",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
