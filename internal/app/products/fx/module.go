package fx

import (
	"shelfwatch-product-harvester/internal/app/products"
	"shelfwatch-product-harvester/internal/app/products/dao"
	"shelfwatch-product-harvester/internal/router"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"products",
	fx.Provide(
		dao.NewProductStore,
		router.AsRoute(products.NewGetByIDHandler),
	),
)
