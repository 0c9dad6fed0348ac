package fx

import (
	"shelfwatch-product-harvester/internal/app/jobs"
	"shelfwatch-product-harvester/internal/pkg/crawlapi"
	"shelfwatch-product-harvester/internal/router"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"crawl-jobs",
	fx.Provide(
		crawlapi.NewClient,
		router.AsRoute(jobs.NewSubmitHandler),
	),
)
