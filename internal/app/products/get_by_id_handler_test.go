package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfwatch-product-harvester/internal/app/products/dao"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReader struct {
	row dao.ProductRow
	err error
}

func (s *stubReader) GetByID(_ context.Context, _ string) (dao.ProductRow, error) {
	return s.row, s.err
}

func newRouter(h *GetByIDHandler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoute(r)
	return r
}

func TestGetByID_ReturnsRow(t *testing.T) {
	h := &GetByIDHandler{
		store: &stubReader{row: dao.ProductRow{
			ID:     "evt-1",
			Status: dao.StatusReady,
			URL:    "https://shop.example/widget",
			Title:  sql.NullString{String: "Widget", Valid: true},
			Price:  sql.NullString{String: "$9.99", Valid: true},
		}},
		logger: zap.NewNop().Sugar(),
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/products/evt-1", nil)
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var row dao.ProductRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	require.Equal(t, "evt-1", row.ID)
	require.Equal(t, dao.StatusReady, row.Status)
}

func TestGetByID_NotFound(t *testing.T) {
	h := &GetByIDHandler{
		store:  &stubReader{err: sql.ErrNoRows},
		logger: zap.NewNop().Sugar(),
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/products/missing", nil)
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetByID_StoreDisabled(t *testing.T) {
	h := &GetByIDHandler{logger: zap.NewNop().Sugar()}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/products/evt-1", nil)
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
