package harvestfn

import (
	"context"
	"fmt"
	"strings"

	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/app/products/dao"
	"shelfwatch-product-harvester/internal/harvest"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const HarvestRequestedEventName = "harvester/url.requested"

type HarvestRequestedEventData struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	OutDir  string            `json:"out_dir,omitempty"`
}

type HarvestFunction struct {
	cfg       *config.Config
	harvester *harvest.Harvester
	store     *dao.ProductStore
	logger    *zap.SugaredLogger
}

type RunResult struct {
	OutPath string          `json:"out_path,omitempty"`
	Record  *harvest.Record `json:"record,omitempty"`
	ErrText string          `json:"err_text,omitempty"`
}

type NewHarvestFunctionParams struct {
	fx.In

	Cfg       *config.Config
	Harvester *harvest.Harvester
	Store     *dao.ProductStore `optional:"true"`
	Logger    *zap.SugaredLogger
}

func NewHarvestFunction(p NewHarvestFunctionParams) *HarvestFunction {
	return &HarvestFunction{
		cfg:       p.Cfg,
		harvester: p.Harvester,
		store:     p.Store,
		logger:    p.Logger,
	}
}

func (f *HarvestFunction) Handle(ctx context.Context, input inngestgo.Input[HarvestRequestedEventData]) (any, error) {
	url := strings.TrimSpace(input.Event.Data.URL)
	if url == "" {
		return nil, inngestgo.NoRetryError(fmt.Errorf("missing url"))
	}

	outDir, err := step.Run(ctx, "resolve-out-dir", func(ctx context.Context) (string, error) {
		outDir := strings.TrimSpace(input.Event.Data.OutDir)
		if outDir == "" {
			outDir = f.cfg.Harvest.OutDir
		}
		if outDir == "" {
			outDir = "out"
		}
		return outDir, nil
	})
	if err != nil {
		return nil, err
	}

	r, err := step.Run(ctx, "run-harvester", func(ctx context.Context) (RunResult, error) {
		f.logger.Infow("🏃🏻 inngest_step",
			"step", "run-harvester",
			"url", url,
		)

		outPath, result, err := f.harvester.RunOnce(ctx, harvest.Options{
			URLs:    []string{url},
			Headers: input.Event.Data.Headers,
			OutDir:  outDir,
		})
		if err != nil {
			f.logger.Errorw("❌ inngest_harvest_failed",
				"url", url,
				"out_path", outPath,
				"err", err,
			)
			return RunResult{OutPath: outPath}, inngestgo.NoRetryError(err)
		}

		if len(result.Records) == 0 {
			// Do not fail the step; we still want to persist the failure.
			return RunResult{OutPath: outPath, ErrText: "harvest skipped url"}, nil
		}

		f.logger.Infoln("✅ done run-harvester")
		return RunResult{OutPath: outPath, Record: &result.Records[0]}, nil
	})
	if err != nil {
		return nil, inngestgo.NoRetryError(err)
	}

	productID, err := step.Run(ctx, "persist-product", func(ctx context.Context) (string, error) {
		if f.store == nil {
			f.logger.Infow("inngest_step_skipped",
				"step", "persist-product",
				"reason", "product store disabled",
			)
			return "", nil
		}

		eventID := ""
		if input.Event.ID != nil {
			eventID = strings.TrimSpace(*input.Event.ID)
		}

		id, err := f.store.UpsertFromHarvest(ctx, dao.UpsertFromHarvestInput{
			EventID:   eventID,
			CreatedBy: "inngest",
			URL:       url,
			Record:    r.Record,
			ErrText:   r.ErrText,
		})
		if err != nil {
			f.logger.Errorw(
				"❌ inngest_step_failed",
				"step", "persist-product",
				"err", err,
			)
			return "", inngestgo.NoRetryError(err)
		}

		f.logger.Infow("✅ done persist-product", "product_id", id)
		return id, nil
	})
	if err != nil {
		return nil, inngestgo.NoRetryError(err)
	}

	resp := map[string]any{
		"product_id": productID,
		"out_path":   r.OutPath,
		"record":     r.Record,
		"err_text":   r.ErrText,
	}

	f.logger.Infow("inngest_harvest_finished",
		"url", url,
		"out_path", r.OutPath,
		"product_id", productID,
	)

	return resp, nil
}
