package products

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"shelfwatch-product-harvester/db"
	"shelfwatch-product-harvester/internal/app/products/dao"
	"shelfwatch-product-harvester/internal/pkg/render"
	"shelfwatch-product-harvester/internal/router"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type GetByIDHandler struct {
	store  productReader
	logger *zap.SugaredLogger
}

type productReader interface {
	GetByID(ctx context.Context, id string) (dao.ProductRow, error)
}

type NewGetByIDHandlerParams struct {
	fx.In

	Store  *dao.ProductStore `optional:"true"`
	Logger *zap.SugaredLogger
}

func NewGetByIDHandler(p NewGetByIDHandlerParams) *GetByIDHandler {
	h := &GetByIDHandler{logger: p.Logger}
	if p.Store != nil {
		h.store = p.Store
	}
	return h
}

func (h *GetByIDHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/products/{id}", h.Handle)
}

func (h *GetByIDHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing id")
		return
	}

	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "product store disabled")
		return
	}

	row, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			render.ChiErr(w, http.StatusNotFound, "product not found")
		case errors.Is(err, db.ErrSQLiteDisabled):
			render.ChiErr(w, http.StatusServiceUnavailable, "product store disabled")
		default:
			h.logger.Errorw("products_get_by_id_failed", "id", id, "err", err)
			render.ChiErr(w, http.StatusInternalServerError, "failed to load product")
		}
		return
	}

	render.ChiJSON(w, http.StatusOK, row)
}

var _ router.Handler = (*GetByIDHandler)(nil)
