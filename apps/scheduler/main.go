package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/loopwire/partnerly/internal/activity"
	"github.com/loopwire/partnerly/internal/catalog"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/config"
	"github.com/loopwire/partnerly/internal/logger"
	"github.com/loopwire/partnerly/internal/performance"
	"github.com/loopwire/partnerly/internal/scheduler"
	"github.com/loopwire/partnerly/internal/similarity"
	"github.com/loopwire/partnerly/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Pipeline services driven by the scheduler.
		catalog.Module,
		activity.Module,
		similarity.Module,
		performance.Module,

		// No server module!
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
