package crawlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/jobspec"
)

var ErrDisabled = errors.New("crawl api disabled: set CRAWL_API_BASE_URL")

// Client submits crawl job payloads to the external crawl-execution service.
// The service runs the crawl; this side only hands over the payload.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   *zap.SugaredLogger
}

func NewClient(cfg *config.Config, logger *zap.SugaredLogger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.CrawlAPI.BaseURL), "/")
	if baseURL == "" {
		logger.Infow("crawl_api_disabled", "reason", "missing CRAWL_API_BASE_URL")
	}

	return &Client{
		baseURL:  baseURL,
		username: strings.TrimSpace(cfg.CrawlAPI.Username),
		password: cfg.CrawlAPI.Password,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type submitResponse struct {
	ID string `json:"id"`
}

// Submit posts the job payload and returns the remote job id.
func (c *Client) Submit(ctx context.Context, job jobspec.Job) (string, error) {
	if c.baseURL == "" {
		return "", ErrDisabled
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal crawl job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit crawl job: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024*64))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("crawl api returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var parsed submitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode crawl api response: %w", err)
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", fmt.Errorf("crawl api response missing job id")
	}

	c.logger.Infow("crawl_job_submitted", "job_id", parsed.ID, "url", job.URL)
	return parsed.ID, nil
}
