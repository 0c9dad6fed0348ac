package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	cachefx "shelfwatch-product-harvester/cache/fx"
	dbfx "shelfwatch-product-harvester/db/fx"
	harvestworkerfx "shelfwatch-product-harvester/internal/app/amqp/harvestworker/fx"
	appfx "shelfwatch-product-harvester/internal/app/fx"
	"shelfwatch-product-harvester/internal/app/products/dao"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.SQLiteModule,
		cachefx.Module,
		fx.Provide(
			// Persistence for harvest results.
			dao.NewProductStore,
		),
		harvestworkerfx.Module,
	)

	app.Run()
}
