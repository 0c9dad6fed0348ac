package fx

import (
	"shelfwatch-product-harvester/internal/app/amqp/enqueue"
	"shelfwatch-product-harvester/internal/pkg/amqpclient"
	"shelfwatch-product-harvester/internal/router"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"amqp-enqueue",
	fx.Provide(
		amqpclient.NewAMQP,
		router.AsRoute(enqueue.NewHandler),
	),
)
