package harvestworker

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type handlerFunc func(ctx context.Context, msg HarvestRequestedEnvelope) error

func (f handlerFunc) Handle(ctx context.Context, msg HarvestRequestedEnvelope) error {
	return f(ctx, msg)
}

func TestConsumer_DeliveryLoopOutlivesStartDeadline(t *testing.T) {
	t.Parallel()

	handled := make(chan HarvestRequestedEnvelope, 1)
	c := &Consumer{
		handler: handlerFunc(func(ctx context.Context, msg HarvestRequestedEnvelope) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			handled <- msg
			return nil
		}),
		logger:      zap.NewNop().Sugar(),
		consumerTag: "harvestworker",
	}

	// Mirror Start's wiring: the loop context is owned by the consumer, not
	// by the deadline-bound context Start was called with.
	startCtx, startCancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer startCancel()

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	deliveries := make(chan amqp.Delivery, 1)
	done := make(chan struct{})
	go func() {
		c.consume(runCtx, deliveries)
		close(done)
	}()

	<-startCtx.Done()

	deliveries <- amqp.Delivery{
		MessageId: "evt-1",
		Body:      []byte(`{"event_name":"harvester/url.requested","event_id":"evt-1","data":{"url":"https://shop.example/widget"}}`),
	}

	select {
	case msg := <-handled:
		require.Equal(t, "evt-1", msg.EventID)
		require.Equal(t, "https://shop.example/widget", msg.Data.URL)
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was not handled after the start deadline passed")
	}

	require.NoError(t, c.Stop(context.Background()))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery loop did not end on Stop")
	}
}

func TestConsumer_StopWithoutStart(t *testing.T) {
	t.Parallel()

	c := &Consumer{logger: zap.NewNop().Sugar(), consumerTag: "harvestworker"}
	require.NoError(t, c.Stop(context.Background()))
}
