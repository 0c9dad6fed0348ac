package fx

import (
	"shelfwatch-product-harvester/cache"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"redis",
	fx.Provide(
		cache.NewRedis,
		cache.NewPageCache,
	),
)
