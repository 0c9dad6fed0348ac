package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shelfwatch-product-harvester/internal/jobspec"
	"shelfwatch-product-harvester/internal/pkg/crawlapi"
	"shelfwatch-product-harvester/internal/pkg/render"
	"shelfwatch-product-harvester/internal/router"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type SubmitHandler struct {
	client jobSubmitter
	logger *zap.SugaredLogger
}

type jobSubmitter interface {
	Submit(ctx context.Context, job jobspec.Job) (string, error)
}

type NewSubmitHandlerParams struct {
	fx.In

	Client *crawlapi.Client
	Logger *zap.SugaredLogger
}

func NewSubmitHandler(p NewSubmitHandlerParams) *SubmitHandler {
	return &SubmitHandler{
		client: p.Client,
		logger: p.Logger,
	}
}

func (h *SubmitHandler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/crawl-jobs", h.Handle)
}

type submitRequest struct {
	URL             string   `json:"url"`
	CrawlPatterns   []string `json:"crawl_patterns,omitempty"`
	ProcessPatterns []string `json:"process_patterns,omitempty"`
	MaxDepth        *int     `json:"max_depth,omitempty"`
	UserAgentType   string   `json:"user_agent_type,omitempty"`
	OutputType      string   `json:"output_type,omitempty"`
}

type submitResponse struct {
	OK    bool        `json:"ok"`
	JobID string      `json:"job_id"`
	Job   jobspec.Job `json:"job"`
}

func (h *SubmitHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing url")
		return
	}

	b := jobspec.NewBuilder(req.URL)
	if len(req.CrawlPatterns) > 0 {
		b.CrawlPatterns(req.CrawlPatterns...)
	}
	if len(req.ProcessPatterns) > 0 {
		b.ProcessPatterns(req.ProcessPatterns...)
	}
	if req.MaxDepth != nil {
		b.MaxDepth(*req.MaxDepth)
	}
	if req.UserAgentType != "" {
		b.UserAgent(jobspec.UserAgentType(req.UserAgentType))
	}
	if req.OutputType != "" {
		b.OutputType(jobspec.OutputType(req.OutputType))
	}

	job, err := b.Build()
	if err != nil {
		render.ChiErr(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := h.client.Submit(r.Context(), job)
	if err != nil {
		if errors.Is(err, crawlapi.ErrDisabled) {
			render.ChiErr(w, http.StatusServiceUnavailable, "crawl api disabled")
			return
		}
		h.logger.Errorw("crawl_job_submit_failed", "url", job.URL, "err", err)
		render.ChiErr(w, http.StatusBadGateway, "crawl api submit failed")
		return
	}

	render.ChiJSON(w, http.StatusOK, submitResponse{OK: true, JobID: jobID, Job: job})
}

var _ router.Handler = (*SubmitHandler)(nil)
