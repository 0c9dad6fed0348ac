package enqueue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shelfwatch-product-harvester/config"
	"shelfwatch-product-harvester/internal/app/amqp/harvestworker"
	"shelfwatch-product-harvester/internal/app/products/dao"
	"shelfwatch-product-harvester/internal/merchant"
	"shelfwatch-product-harvester/internal/pkg/render"
	"shelfwatch-product-harvester/internal/router"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Handler struct {
	cfg           *config.Config
	channel       *amqp.Channel
	logger        *zap.SugaredLogger
	store         queuedWriter
	sqliteEnabled bool

	publish func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type queuedWriter interface {
	UpsertQueued(ctx context.Context, in dao.UpsertQueuedInput) (string, error)
}

type NewHandlerParams struct {
	fx.In

	Cfg      *config.Config
	Channel  *amqp.Channel `optional:"true"`
	Logger   *zap.SugaredLogger
	Store    *dao.ProductStore `optional:"true"`
	SQLiteDB *sqlx.DB          `name:"sqlite" optional:"true"`
}

func NewHandler(p NewHandlerParams) *Handler {
	var publishFn func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	if p.Channel != nil {
		publishFn = p.Channel.PublishWithContext
	}

	h := &Handler{
		cfg:           p.Cfg,
		channel:       p.Channel,
		logger:        p.Logger,
		sqliteEnabled: p.SQLiteDB != nil,
		publish:       publishFn,
	}
	if p.Store != nil {
		h.store = p.Store
	}
	return h
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/harvest/enqueue", h.Handle)
}

type enqueueRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

type enqueueResponse struct {
	OK      bool   `json:"ok"`
	EventID string `json:"event_id"`
	ID      string `json:"id,omitempty"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing url")
		return
	}

	m, err := merchant.Detect(rawURL)
	if err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid url")
		return
	}

	if h.cfg.RabbitMQ.URL == "" || h.publish == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "rabbitmq disabled")
		return
	}

	ex := h.cfg.RabbitMQ.Exchange
	if ex == "" {
		ex = "events"
	}
	routingKey := h.cfg.RabbitMQ.RoutingKey
	if routingKey == "" {
		routingKey = "harvester.url.requested.v1"
	}

	now := time.Now().UTC()
	eventID := eventIDFromURL(rawURL)
	productID := ""

	if h.store != nil && h.sqliteEnabled {
		id, err := h.store.UpsertQueued(r.Context(), dao.UpsertQueuedInput{
			EventID:   eventID,
			CreatedBy: "enqueue",
			URL:       rawURL,
			Merchant:  string(m),
		})
		if err != nil {
			h.logger.Errorw("enqueue_persist_queued_failed", "event_id", eventID, "url", rawURL, "err", err)
		} else {
			productID = id
		}
	}

	env := harvestworker.HarvestRequestedEnvelope{
		EventName: harvestworker.HarvestRequestedEventName,
		EventID:   eventID,
		TS:        now,
		Data: harvestworker.HarvestRequestedEventData{
			URL:     rawURL,
			Headers: req.Headers,
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		h.logger.Errorw("enqueue_marshal_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to encode message")
		return
	}

	if h.channel != nil && h.cfg.RabbitMQ.DeclareTopology {
		if err := h.channel.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			h.logger.Errorw("enqueue_exchange_declare_failed", "exchange", ex, "err", err)
			render.ChiErr(w, http.StatusBadGateway, "rabbitmq exchange declare failed")
			return
		}
	}

	if err := h.publish(r.Context(), ex, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    now,
		MessageId:    eventID,
		Body:         body,
	}); err != nil {
		h.logger.Errorw(
			"enqueue_publish_failed",
			"exchange", ex,
			"routing_key", routingKey,
			"event_id", eventID,
			"url", rawURL,
			"err", err,
		)
		render.ChiErr(w, http.StatusBadGateway, "failed to publish message")
		return
	}

	h.logger.Infow("enqueue_published", "exchange", ex, "routing_key", routingKey, "event_id", eventID, "url", rawURL)
	render.ChiJSON(w, http.StatusOK, enqueueResponse{OK: true, EventID: eventID, ID: productID})
}

func eventIDFromURL(u string) string {
	sum := sha256.Sum256([]byte(u))
	return "urlsha256:" + hex.EncodeToString(sum[:])
}

var _ router.Handler = (*Handler)(nil)
