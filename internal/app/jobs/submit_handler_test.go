package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shelfwatch-product-harvester/internal/jobspec"
	"shelfwatch-product-harvester/internal/pkg/crawlapi"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSubmitter struct {
	gotJob jobspec.Job
	id     string
	err    error
}

func (s *stubSubmitter) Submit(_ context.Context, job jobspec.Job) (string, error) {
	s.gotJob = job
	return s.id, s.err
}

func newTestHandler(sub jobSubmitter) *SubmitHandler {
	return &SubmitHandler{client: sub, logger: zap.NewNop().Sugar()}
}

func TestSubmit_BuildsJobWithDefaults(t *testing.T) {
	sub := &stubSubmitter{id: "job-42"}
	h := newTestHandler(sub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/crawl-jobs", strings.NewReader(
		`{"url":"https://shop.example.com/"}`,
	))
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://shop.example.com/", sub.gotJob.URL)
	require.Equal(t, []string{".*"}, sub.gotJob.Filters.Crawl)
	require.Equal(t, 1, sub.gotJob.Filters.MaxDepth)
	require.Equal(t, jobspec.UADesktop, sub.gotJob.ScrapeParams.UserAgentType)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "job-42", resp.JobID)
}

func TestSubmit_OverridesFromRequest(t *testing.T) {
	sub := &stubSubmitter{id: "job-43"}
	h := newTestHandler(sub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/crawl-jobs", strings.NewReader(
		`{"url":"https://shop.example.com/","crawl_patterns":["/category/.*"],"process_patterns":["/product/.*"],"max_depth":3,"user_agent_type":"mobile","output_type":"parsed"}`,
	))
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"/category/.*"}, sub.gotJob.Filters.Crawl)
	require.Equal(t, []string{"/product/.*"}, sub.gotJob.Filters.Process)
	require.Equal(t, 3, sub.gotJob.Filters.MaxDepth)
	require.Equal(t, jobspec.UAMobile, sub.gotJob.ScrapeParams.UserAgentType)
	require.Equal(t, jobspec.OutputParsed, sub.gotJob.Output.Type)
}

func TestSubmit_InvalidBuild(t *testing.T) {
	h := newTestHandler(&stubSubmitter{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/crawl-jobs", strings.NewReader(
		`{"url":"https://shop.example.com/","crawl_patterns":["["]}`,
	))
	h.Handle(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_MissingURL(t *testing.T) {
	h := newTestHandler(&stubSubmitter{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/crawl-jobs", strings.NewReader(`{}`))
	h.Handle(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_CrawlAPIDisabled(t *testing.T) {
	h := newTestHandler(&stubSubmitter{err: crawlapi.ErrDisabled})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/crawl-jobs", strings.NewReader(
		`{"url":"https://shop.example.com/"}`,
	))
	h.Handle(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
