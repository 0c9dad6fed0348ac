package harvest

import (
	"bytes"
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/cache"
	"shelfwatch-product-harvester/internal/fetch"
	"shelfwatch-product-harvester/internal/merchant"
	"shelfwatch-product-harvester/internal/scrape"
)

// Record is one harvested product. Records come back in the same order as
// the input URLs; a URL that cannot be harvested contributes no record.
type Record struct {
	URL      string `json:"url"`
	Merchant string `json:"merchant,omitempty"`
	Title    string `json:"title"`
	Price    string `json:"price"`
}

type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

type Harvester struct {
	fetcher Getter
	cache   *cache.PageCache
	logger  *zap.SugaredLogger
}

type NewHarvesterParams struct {
	fx.In

	Fetcher *fetch.Fetcher
	Cache   *cache.PageCache `optional:"true"`
	Logger  *zap.SugaredLogger
}

func NewHarvester(p NewHarvesterParams) *Harvester {
	return &Harvester{
		fetcher: p.Fetcher,
		cache:   p.Cache,
		logger:  p.Logger,
	}
}

// Run walks the URLs strictly in order, one blocking GET at a time, and
// returns a newly built slice of records. Per-URL failures (network,
// non-success status, missing title or price element) skip that URL and are
// logged; they never abort the pass.
func (h *Harvester) Run(ctx context.Context, urls []string, headers map[string]string) []Record {
	records := make([]Record, 0, len(urls))

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			h.logger.Warnw("harvest_cancelled", "url", url, "err", err)
			return records
		}

		rec, err := h.harvestOne(ctx, url, headers)
		if err != nil {
			h.logger.Warnw("harvest_url_skipped", "url", url, "err", err)
			continue
		}
		records = append(records, rec)
	}

	return records
}

func (h *Harvester) harvestOne(ctx context.Context, url string, headers map[string]string) (Record, error) {
	profile := scrape.DefaultProfile()
	merchantLabel := ""
	if m, err := merchant.Detect(url); err == nil {
		profile = scrape.ForMerchant(m)
		merchantLabel = string(m)
	}

	body, cached := h.cache.Get(ctx, url)
	if !cached {
		var err error
		body, err = h.fetcher.Get(ctx, url, headers)
		if err != nil {
			return Record{}, err
		}
		h.cache.Put(ctx, url, body)
	}

	product, err := scrape.ExtractProduct(bytes.NewReader(body), profile)
	if err != nil {
		return Record{}, err
	}

	return Record{
		URL:      url,
		Merchant: merchantLabel,
		Title:    product.Title,
		Price:    product.Price,
	}, nil
}
