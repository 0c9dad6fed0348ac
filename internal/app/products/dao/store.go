package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shelfwatch-product-harvester/db"
	"shelfwatch-product-harvester/internal/harvest"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	StatusQueued = "QUEUED"
	StatusReady  = "READY"
	StatusFailed = "FAILED"
)

type ProductStore struct {
	conn      db.Conn
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

type NewProductStoreParams struct {
	fx.In

	Conn   db.Conn `name:"sqlite"`
	Logger *zap.SugaredLogger
}

func NewProductStore(p NewProductStoreParams) *ProductStore {
	return &ProductStore{
		conn:      p.Conn,
		logger:    p.Logger,
		validator: validator.New(),
	}
}

type ProductRow struct {
	ID          string         `json:"id"`
	EventID     sql.NullString `json:"event_id"`
	Status      string         `json:"status"`
	URL         string         `json:"url"`
	Merchant    sql.NullString `json:"merchant"`
	Title       sql.NullString `json:"title"`
	Price       sql.NullString `json:"price"`
	Error       sql.NullString `json:"error"`
	CreatedBy   sql.NullString `json:"created_by"`
	CreatedAtMs int64          `json:"created_at_ms"`
	UpdatedAtMs int64          `json:"updated_at_ms"`
}

type UpsertQueuedInput struct {
	EventID   string
	CreatedBy string
	URL       string `validate:"required"`
	Merchant  string
}

// UpsertQueued records that a harvest for the URL has been enqueued.
func (s *ProductStore) UpsertQueued(ctx context.Context, in UpsertQueuedInput) (string, error) {
	_ = ctx

	if err := s.validator.Struct(in); err != nil {
		return "", fmt.Errorf("validate queued input: %w", err)
	}

	id := in.EventID
	if id == "" {
		id = uuid.NewString()
	}

	q := s.conn.Rebind(`
INSERT INTO products (
  id,
  event_id,
  status,
  url,
  merchant,
  created_by,
  updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  status = excluded.status,
  merchant = excluded.merchant,
  created_by = excluded.created_by,
  updated_at_ms = excluded.updated_at_ms
`)

	now := time.Now().UnixMilli()
	if _, err := s.conn.Exec(q, id, in.EventID, StatusQueued, in.URL, nullable(in.Merchant), nullable(in.CreatedBy), now); err != nil {
		if errors.Is(err, db.ErrSQLiteDisabled) {
			s.logger.Infow("turso_sqlite_disabled_skip_persist", "reason", err.Error())
			return id, nil
		}
		return "", fmt.Errorf("upsert queued product: %w", err)
	}

	s.logger.Infow("product_queued", "id", id, "url", in.URL)
	return id, nil
}

type UpsertFromHarvestInput struct {
	EventID   string
	CreatedBy string
	URL       string `validate:"required"`
	Record    *harvest.Record
	ErrText   string
}

// UpsertFromHarvest persists the outcome of one harvested URL. A nil Record
// marks the row FAILED with ErrText.
func (s *ProductStore) UpsertFromHarvest(ctx context.Context, in UpsertFromHarvestInput) (string, error) {
	_ = ctx

	if err := s.validator.Struct(in); err != nil {
		return "", fmt.Errorf("validate harvest input: %w", err)
	}

	id := in.EventID
	if id == "" {
		id = uuid.NewString()
	}

	status := StatusReady
	var title, price, merchant, errText sql.NullString
	if in.Record != nil {
		title = nullable(in.Record.Title)
		price = nullable(in.Record.Price)
		merchant = nullable(in.Record.Merchant)
	} else {
		status = StatusFailed
		if in.ErrText == "" {
			in.ErrText = "harvest produced no record"
		}
		errText = nullable(in.ErrText)
	}

	q := s.conn.Rebind(`
INSERT INTO products (
  id,
  event_id,
  status,
  url,
  merchant,
  title,
  price,
  error,
  created_by,
  updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  status = excluded.status,
  merchant = excluded.merchant,
  title = excluded.title,
  price = excluded.price,
  error = excluded.error,
  created_by = excluded.created_by,
  updated_at_ms = excluded.updated_at_ms
`)

	now := time.Now().UnixMilli()
	if _, err := s.conn.Exec(q, id, in.EventID, status, in.URL, merchant, title, price, errText, nullable(in.CreatedBy), now); err != nil {
		if errors.Is(err, db.ErrSQLiteDisabled) {
			s.logger.Infow("turso_sqlite_disabled_skip_persist", "reason", err.Error())
			return id, nil
		}
		return "", fmt.Errorf("upsert harvested product: %w", err)
	}

	s.logger.Infow("product_upserted_from_harvest", "id", id, "status", status)
	return id, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (ProductRow, error) {
	_ = ctx

	var row ProductRow
	err := s.conn.QueryRowx(
		s.conn.Rebind(`SELECT id, event_id, status, url, merchant, title, price, error, created_by, created_at_ms, updated_at_ms FROM products WHERE id = ?`),
		id,
	).StructScan(&row)
	if err != nil {
		return ProductRow{}, err
	}
	return row, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
