package harvestworker

import (
	"context"
	"fmt"
	"strings"

	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/app/products/dao"
	"shelfwatch-product-harvester/internal/harvest"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type HarvestHandler struct {
	cfg       *config.Config
	harvester *harvest.Harvester
	store     *dao.ProductStore
	logger    *zap.SugaredLogger
}

type NewHarvestHandlerParams struct {
	fx.In

	Cfg       *config.Config
	Harvester *harvest.Harvester
	Store     *dao.ProductStore
	Logger    *zap.SugaredLogger
}

func NewHarvestHandler(p NewHarvestHandlerParams) *HarvestHandler {
	return &HarvestHandler{
		cfg:       p.Cfg,
		harvester: p.Harvester,
		store:     p.Store,
		logger:    p.Logger,
	}
}

func (h *HarvestHandler) Handle(ctx context.Context, msg HarvestRequestedEnvelope) error {
	url := strings.TrimSpace(msg.Data.URL)
	if url == "" {
		return fmt.Errorf("missing url")
	}
	if strings.TrimSpace(msg.EventID) == "" {
		return fmt.Errorf("missing event_id")
	}
	if strings.TrimSpace(msg.EventName) != "" && msg.EventName != HarvestRequestedEventName {
		return fmt.Errorf("unexpected event_name: %s", msg.EventName)
	}

	outDir := strings.TrimSpace(msg.Data.OutDir)
	if outDir == "" {
		outDir = h.cfg.Harvest.OutDir
	}

	var rec *harvest.Record
	errText := ""
	outPath, result, err := h.harvester.RunOnce(ctx, harvest.Options{
		URLs:    []string{url},
		Headers: msg.Data.Headers,
		OutDir:  outDir,
	})
	switch {
	case err != nil:
		errText = err.Error()
		h.logger.Errorw("harvestworker_harvest_failed",
			"event_id", msg.EventID,
			"url", url,
			"err", err,
		)
	case len(result.Records) > 0:
		rec = &result.Records[0]
		h.logger.Infow("harvestworker_harvest_ok",
			"event_id", msg.EventID,
			"url", url,
			"out_path", outPath,
			"title", rec.Title,
		)
	default:
		// The harvester already logged why the URL was skipped; persist the
		// failure so the row does not stay QUEUED forever.
		errText = "harvest skipped url"
		h.logger.Warnw("harvestworker_harvest_empty",
			"event_id", msg.EventID,
			"url", url,
			"out_path", outPath,
		)
	}

	productID, err := h.store.UpsertFromHarvest(ctx, dao.UpsertFromHarvestInput{
		EventID:   msg.EventID,
		CreatedBy: "rabbitmq",
		URL:       url,
		Record:    rec,
		ErrText:   errText,
	})
	if err != nil {
		h.logger.Errorw("harvestworker_persist_failed",
			"event_id", msg.EventID,
			"url", url,
			"err", err,
		)
		return err
	}

	h.logger.Infow("harvestworker_finished",
		"event_id", msg.EventID,
		"url", url,
		"product_id", productID,
	)

	return nil
}
