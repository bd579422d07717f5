package ranking

import (
	"github.com/loopwire/partnerly/internal/ranking/repository"
	"github.com/loopwire/partnerly/internal/ranking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ranking",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
