package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	cachefx "shelfwatch-product-harvester/cache/fx"
	dbfx "shelfwatch-product-harvester/db/fx"
	enqueuefx "shelfwatch-product-harvester/internal/app/amqp/enqueue/fx"
	appfx "shelfwatch-product-harvester/internal/app/fx"
	healthfx "shelfwatch-product-harvester/internal/app/health/fx"
	inngestfx "shelfwatch-product-harvester/internal/app/inngest/fx"
	jobsfx "shelfwatch-product-harvester/internal/app/jobs/fx"
	productsfx "shelfwatch-product-harvester/internal/app/products/fx"
	routerfx "shelfwatch-product-harvester/internal/router/fx"
	serverfx "shelfwatch-product-harvester/internal/server/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.Module,
		dbfx.SQLiteModule,
		cachefx.Module,
		routerfx.CoreRouterOptions,
		serverfx.ServerOptions,
		healthfx.Module,
		productsfx.Module,
		jobsfx.Module,
		inngestfx.Module,
		enqueuefx.Module,
	)

	app.Run()
}
