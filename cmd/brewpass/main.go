package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/brewpass/brewpass/internal/clock"
	"github.com/brewpass/brewpass/internal/config"
	"github.com/brewpass/brewpass/internal/logger"
	"github.com/brewpass/brewpass/internal/migration"
	"github.com/brewpass/brewpass/internal/observability"
	"github.com/brewpass/brewpass/internal/server"
	"github.com/brewpass/brewpass/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
