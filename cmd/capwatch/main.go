package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/capwatch/capwatch/internal/capacity"
	"github.com/capwatch/capwatch/internal/clock"
	"github.com/capwatch/capwatch/internal/config"
	"github.com/capwatch/capwatch/internal/logger"
	"github.com/capwatch/capwatch/internal/migration"
	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	"github.com/capwatch/capwatch/internal/offering"
	"github.com/capwatch/capwatch/internal/reconcile"
	"github.com/capwatch/capwatch/internal/server"
	"github.com/capwatch/capwatch/internal/subscription"
	"github.com/capwatch/capwatch/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		obsmetrics.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,

		offering.Module,
		subscription.Module,
		capacity.Module,
		reconcile.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
