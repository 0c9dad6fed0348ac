package fx

import (
	"go.uber.org/fx"

	"shelfwatch-product-harvester/internal/app/health"
	"shelfwatch-product-harvester/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(health.NewHandler)),
)
