package fx

import (
	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/fetch"
	"shelfwatch-product-harvester/internal/harvest"
	"shelfwatch-product-harvester/internal/logs"

	"go.uber.org/fx"
)

var CoreAppOptions = fx.Options(
	fx.Provide(
		config.NewViper,
		config.NewConfig,
		logs.NewLogger,
		logs.NewSugaredLogger,
		fetch.NewFetcher,
		harvest.NewHarvester,
	),
)
