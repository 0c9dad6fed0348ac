package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"
)

// Fetcher issues blocking GET requests with bounded retries. One request is
// fully awaited before the caller moves on; there is no parallelism here.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	logger     *zap.SugaredLogger
}

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

func NewFetcher(cfg *config.Config, logger *zap.SugaredLogger) *Fetcher {
	timeout := time.Duration(cfg.Harvest.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:  cfg.Harvest.UserAgentDesktop,
		maxRetries: cfg.Harvest.MaxRetries,
		logger:     logger,
	}
}

// Get fetches the URL with the caller-supplied header map layered over the
// defaults. Transport errors and 5xx/429 responses are retried with
// exponential backoff; any other non-2xx status fails immediately.
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, status, err := f.getOnce(ctx, url, headers)
		if err != nil {
			lastErr = err
			continue
		}

		if status >= 500 || status == http.StatusTooManyRequests {
			lastErr = &StatusError{URL: url, StatusCode: status}
			continue
		}
		if status < 200 || status >= 300 {
			return nil, &StatusError{URL: url, StatusCode: status}
		}

		return body, nil
	}

	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", url, f.maxRetries+1, lastErr)
}

func (f *Fetcher) getOnce(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Warnw("fetch_body_close_failed", "url", url, "err", cerr)
		}
	}()

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, 0, err
	}

	return body, resp.StatusCode, nil
}

// backoff is 250ms * 2^(attempt-1), capped at 5s, with ±20% jitter.
func backoff(attempt int) time.Duration {
	base := 250 * time.Millisecond << uint(attempt-1)
	if base > 5*time.Second {
		base = 5 * time.Second
	}
	jitter := (rand.Float64() - 0.5) * 0.4 * float64(base)
	return base + time.Duration(jitter)
}
