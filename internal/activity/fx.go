package activity

import (
	"github.com/loopwire/partnerly/internal/activity/repository"
	"github.com/loopwire/partnerly/internal/activity/service"
	"github.com/loopwire/partnerly/internal/activity/stream"
	"go.uber.org/fx"
)

var Module = fx.Module("activity",
	fx.Provide(stream.NewClient),
	fx.Provide(stream.NewRedisStream),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
