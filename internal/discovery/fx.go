package discovery

import (
	"github.com/loopwire/partnerly/internal/discovery/repository"
	"github.com/loopwire/partnerly/internal/discovery/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discovery",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
