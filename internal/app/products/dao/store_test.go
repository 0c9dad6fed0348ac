package dao

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/internal/harvest"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  event_id TEXT,
  status TEXT NOT NULL DEFAULT 'QUEUED',
  url TEXT NOT NULL,
  merchant TEXT,
  title TEXT,
  price TEXT,
  error TEXT,
  created_by TEXT,
  created_at_ms INTEGER NOT NULL DEFAULT 0,
  updated_at_ms INTEGER NOT NULL DEFAULT 0
);
`

func newTestStore(t *testing.T) *ProductStore {
	t.Helper()

	sqldb, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })

	sqldb.Mapper = reflectx.NewMapperFunc("json", strings.ToLower)
	_, err = sqldb.Exec(schema)
	require.NoError(t, err)

	return &ProductStore{
		conn:      sqldb,
		logger:    zap.NewNop().Sugar(),
		validator: validator.New(),
	}
}

func TestUpsertQueued_ThenHarvestOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertQueued(ctx, UpsertQueuedInput{
		EventID:   "evt-1",
		CreatedBy: "enqueue",
		URL:       "https://shop.example/widget",
		Merchant:  "shop.example",
	})
	require.NoError(t, err)
	require.Equal(t, "evt-1", id)

	row, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatusQueued, row.Status)
	require.Equal(t, "https://shop.example/widget", row.URL)

	_, err = store.UpsertFromHarvest(ctx, UpsertFromHarvestInput{
		EventID:   "evt-1",
		CreatedBy: "rabbitmq",
		URL:       "https://shop.example/widget",
		Record: &harvest.Record{
			URL:      "https://shop.example/widget",
			Merchant: "shop.example",
			Title:    "Widget",
			Price:    "$9.99",
		},
	})
	require.NoError(t, err)

	row, err = store.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatusReady, row.Status)
	require.Equal(t, "Widget", row.Title.String)
	require.Equal(t, "$9.99", row.Price.String)
	require.False(t, row.Error.Valid)
}

func TestUpsertFromHarvest_NilRecordMarksFailed(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertFromHarvest(ctx, UpsertFromHarvestInput{
		EventID: "evt-2",
		URL:     "https://shop.example/gone",
		ErrText: "no title element in document",
	})
	require.NoError(t, err)

	row, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, row.Status)
	require.Equal(t, "no title element in document", row.Error.String)
	require.False(t, row.Title.Valid)
}

func TestUpsertQueued_GeneratesIDWhenEventIDEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	id, err := store.UpsertQueued(context.Background(), UpsertQueuedInput{
		URL: "https://shop.example/x",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
}

func TestUpsertQueued_RejectsMissingURL(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.UpsertQueued(context.Background(), UpsertQueuedInput{})
	require.Error(t, err)
}
