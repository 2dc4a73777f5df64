package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/internal/clock"
	"github.com/smallbiznis/rosterly/internal/config"
	"github.com/smallbiznis/rosterly/internal/migration"
	"github.com/smallbiznis/rosterly/internal/observability"
	"github.com/smallbiznis/rosterly/internal/scheduler"
	"github.com/smallbiznis/rosterly/internal/server"
	"github.com/smallbiznis/rosterly/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
