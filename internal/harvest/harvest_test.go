package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/fetch"
)

func newTestHarvester(t *testing.T) *Harvester {
	t.Helper()
	cfg := &config.Config{}
	cfg.Harvest.UserAgentDesktop = "shelfwatch-test/1.0"
	cfg.Harvest.TimeoutMS = 5000
	return &Harvester{
		fetcher: fetch.NewFetcher(cfg, zap.NewNop().Sugar()),
		logger:  zap.NewNop().Sugar(),
	}
}

func productPage(title, price string) string {
	return fmt.Sprintf(`<html><body><h1>%s</h1><span itemprop="price">%s</span></body></html>`, title, price)
}

func TestRun_SingleURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage("Widget", "$9.99")))
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	records := h.Run(context.Background(), []string{srv.URL + "/a"}, nil)

	require.Len(t, records, 1)
	require.Equal(t, "Widget", records[0].Title)
	require.Equal(t, "$9.99", records[0].Price)
	require.Equal(t, srv.URL+"/a", records[0].URL)
}

func TestRun_RecordsFollowInputOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/first":
			_, _ = w.Write([]byte(productPage("First", "$1.00")))
		case "/second":
			_, _ = w.Write([]byte(productPage("Second", "$2.00")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	records := h.Run(context.Background(), []string{srv.URL + "/first", srv.URL + "/second"}, nil)

	require.Len(t, records, 2)
	require.Equal(t, "First", records[0].Title)
	require.Equal(t, "Second", records[1].Title)
}

func TestRun_RerunAppendsSameRecordsAgain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage("Widget", "$9.99")))
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	urls := []string{srv.URL + "/a"}

	first := h.Run(context.Background(), urls, nil)
	second := h.Run(context.Background(), urls, nil)

	// No dedupe: the same inputs always yield the same records again.
	require.Equal(t, first, second)
	require.Len(t, append(first, second...), 2)
}

func TestRun_SkipsURLMissingTitle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/no-title":
			_, _ = w.Write([]byte(`<html><body><span itemprop="price">$5.00</span></body></html>`))
		default:
			_, _ = w.Write([]byte(productPage("Kept", "$3.00")))
		}
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	records := h.Run(context.Background(), []string{srv.URL + "/no-title", srv.URL + "/ok"}, nil)

	// A page without the title element is skipped, not fatal.
	require.Len(t, records, 1)
	require.Equal(t, "Kept", records[0].Title)
}

func TestRun_SkipsFailedFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(productPage("Alive", "$7.00")))
		}
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	records := h.Run(context.Background(), []string{srv.URL + "/gone", srv.URL + "/ok"}, nil)

	require.Len(t, records, 1)
	require.Equal(t, "Alive", records[0].Title)
}

func TestRun_ForwardsCallerHeaders(t *testing.T) {
	t.Parallel()

	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte(productPage("Widget", "$9.99")))
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	h.Run(context.Background(), []string{srv.URL}, map[string]string{"Cookie": "session=abc"})

	require.Equal(t, "session=abc", gotCookie)
}

func TestRunOnce_WritesBatchResultFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage("Widget", "$9.99")))
	}))
	t.Cleanup(srv.Close)

	h := newTestHarvester(t)
	outDir := t.TempDir()

	outPath, result, err := h.RunOnce(context.Background(), Options{
		URLs:   []string{srv.URL},
		OutDir: outDir,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	require.Equal(t, 0, result.Skipped)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var got BatchResult
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Records, 1)
	require.Equal(t, "Widget", got.Records[0].Title)
}

func TestRunOnce_MissingURLs(t *testing.T) {
	t.Parallel()

	h := newTestHarvester(t)
	_, _, err := h.RunOnce(context.Background(), Options{OutDir: t.TempDir()})
	require.Error(t, err)
}
