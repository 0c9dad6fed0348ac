package fx

import (
	"go.uber.org/fx"

	"shelfwatch-product-harvester/cache"
	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/db"
	"shelfwatch-product-harvester/internal/fetch"
	"shelfwatch-product-harvester/internal/harvest"
	"shelfwatch-product-harvester/internal/logs"
)

var Module = fx.Options(
	fx.Provide(
		config.NewViper,
		config.NewConfig,
		logs.NewLogger,
		logs.NewSugaredLogger,
		db.NewSQLXPostgresDB,
		cache.NewRedis,
		cache.NewPageCache,
		fetch.NewFetcher,
		harvest.NewHarvester,
	),
	fx.Invoke(logs.RegisterLifecycle),
)
