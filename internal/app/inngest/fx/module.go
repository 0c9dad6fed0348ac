package fx

import (
	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/app/inngest"
	"shelfwatch-product-harvester/internal/app/inngest/harvestfn"
	pkginngest "shelfwatch-product-harvester/internal/pkg/inngest"
	"shelfwatch-product-harvester/internal/router"

	"github.com/inngest/inngestgo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(
		pkginngest.NewInngestClient,
		harvestfn.NewHarvestFunction,
		router.AsRoute(inngest.NewInngestHandler),
	),
	fx.Invoke(registerFunctions),
)

func registerFunctions(
	cfg *config.Config,
	client inngestgo.Client,
	harvestFunc *harvestfn.HarvestFunction,
	logger *zap.SugaredLogger,
) error {
	if cfg != nil && cfg.Inngest.AppID == "" {
		logger.Infow("inngest_disabled", "reason", "missing INNGEST_APP_ID")
		return nil
	}

	_, err := inngestgo.CreateFunction(
		client,
		inngestgo.FunctionOpts{
			ID:      "harvest-url",
			Retries: inngestgo.IntPtr(0),
		},
		inngestgo.EventTrigger(harvestfn.HarvestRequestedEventName, nil),
		harvestFunc.Handle,
	)
	if err != nil {
		logger.Errorw(
			"❌ failed to create inngest harvest function",
			"err", err.Error(),
		)
		return err
	}

	logger.Infow("inngest_enabled",
		"path", cfg.Inngest.ServePath,
		"event", harvestfn.HarvestRequestedEventName,
	)
	return nil
}
