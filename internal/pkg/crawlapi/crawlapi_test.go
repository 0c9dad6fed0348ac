package crawlapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/jobspec"
)

func TestSubmit_PostsPayloadWithAuth(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/jobs", r.URL.Path)
		gotUser, gotPass, _ = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"job-123"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.CrawlAPI.BaseURL = srv.URL
	cfg.CrawlAPI.Username = "user"
	cfg.CrawlAPI.Password = "pass"

	c := NewClient(cfg, zap.NewNop().Sugar())

	job, err := jobspec.NewBuilder("https://www.amazon.com/").Build()
	require.NoError(t, err)

	id, err := c.Submit(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, "job-123", id)
	require.Equal(t, "user", gotUser)
	require.Equal(t, "pass", gotPass)

	require.Equal(t, "https://www.amazon.com/", gotBody["url"])
	filters, ok := gotBody["filters"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(1), filters["max_depth"])
}

func TestSubmit_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad filters"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.CrawlAPI.BaseURL = srv.URL

	c := NewClient(cfg, zap.NewNop().Sugar())

	job, err := jobspec.NewBuilder("https://shop.example/").Build()
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), job)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad filters")
}

func TestSubmit_DisabledWithoutBaseURL(t *testing.T) {
	t.Parallel()

	c := NewClient(&config.Config{}, zap.NewNop().Sugar())

	job, err := jobspec.NewBuilder("https://shop.example/").Build()
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), job)
	require.ErrorIs(t, err, ErrDisabled)
}
