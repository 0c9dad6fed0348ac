package fx

import (
	"context"

	"shelfwatch-product-harvester/internal/app/amqp/harvestworker"
	"shelfwatch-product-harvester/internal/pkg/amqpclient"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module(
	"amqp-harvestworker",
	fx.Provide(
		amqpclient.NewAMQP,
		fx.Annotate(
			harvestworker.NewHarvestHandler,
			fx.As(new(harvestworker.Handler)),
		),
		harvestworker.NewConsumer,
	),
	fx.Invoke(registerLifecycleHooks),
)

type hooksParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Consumer  *harvestworker.Consumer
	Logger    *zap.SugaredLogger
}

func registerLifecycleHooks(p hooksParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Infow("harvestworker_starting")
			return p.Consumer.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Infow("harvestworker_stopping")
			return p.Consumer.Stop(ctx)
		},
	})
}
