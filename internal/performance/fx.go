package performance

import (
	"github.com/loopwire/partnerly/internal/performance/repository"
	"github.com/loopwire/partnerly/internal/performance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("performance",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
