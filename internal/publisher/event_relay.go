package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/prudhivi99/guitar-store/internal/models"
)

const relayBuffer = 256

// ExchangePublisher is the part of messaging.RabbitMQ the relay needs.
type ExchangePublisher interface {
	PublishToExchange(ctx context.Context, exchange string, message []byte) error
}

// EventRelay forwards locally published change events to the cluster
// exchange so other instances can push them to their own clients.
type EventRelay struct {
	mq       ExchangePublisher
	exchange string
	queue    chan models.ChangeEvent
	dropped  atomic.Int64
	logger   *slog.Logger
}

func NewEventRelay(mq ExchangePublisher, exchange string, logger *slog.Logger) *EventRelay {
	return &EventRelay{
		mq:       mq,
		exchange: exchange,
		queue:    make(chan models.ChangeEvent, relayBuffer),
		logger:   logger,
	}
}

// Enqueue is registered as a bus observer. It runs under the bus lock, so it
// never blocks: when the relay is behind the event is dropped.
func (r *EventRelay) Enqueue(ev models.ChangeEvent) {
	select {
	case r.queue <- ev:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many events were not relayed because the queue was full.
func (r *EventRelay) Dropped() int64 {
	return r.dropped.Load()
}

// Run publishes queued events until ctx is cancelled.
func (r *EventRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.queue:
			if err := r.publish(ctx, ev); err != nil {
				r.logger.Warn("failed to relay event", "kind", ev.Kind, "error", err)
			}
		}
	}
}

func (r *EventRelay) publish(ctx context.Context, ev models.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.mq.PublishToExchange(ctx, r.exchange, data)
}
