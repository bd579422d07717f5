package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/config"
	"github.com/loopwire/partnerly/internal/logger"
	"github.com/loopwire/partnerly/internal/scheduler"
	"github.com/loopwire/partnerly/internal/server"
	"github.com/loopwire/partnerly/pkg/db"
	"go.uber.org/fx"
)

// All-in-one binary: API surface and pipeline scheduler in a single
// process. Deployments that split the two use apps/api and
// apps/scheduler instead.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		server.Module,
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
