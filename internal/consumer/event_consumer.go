package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// RemotePublisher delivers an event from another instance to local
// subscribers without relaying it again.
type RemotePublisher interface {
	PublishRemote(ev models.ChangeEvent)
}

// BrandCache is the local brand read cache. Remote writes must drop the
// entries they made stale.
type BrandCache interface {
	Invalidate(ctx context.Context, brandID int)
	InvalidateAll(ctx context.Context)
}

type EventConsumer struct {
	bus    RemotePublisher
	brands BrandCache
	origin string
	logger *slog.Logger
}

// NewEventConsumer builds a consumer for the instance identified by origin.
// brands may be nil.
func NewEventConsumer(bus RemotePublisher, brands BrandCache, origin string, logger *slog.Logger) *EventConsumer {
	return &EventConsumer{bus: bus, brands: brands, origin: origin, logger: logger}
}

// Process handles change events from the instance queue until messages is
// closed. Events this instance published itself are acknowledged and skipped.
func (c *EventConsumer) Process(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var ev models.ChangeEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil || ev.Kind == "" {
			c.logger.Warn("dropping malformed change event", "error", err)
			_ = msg.Nack(false, false) // Don't requeue bad messages
			continue
		}

		if ev.Origin == c.origin {
			_ = msg.Ack(false)
			continue
		}

		c.invalidate(ev)
		c.bus.PublishRemote(ev)
		_ = msg.Ack(false)
		c.logger.Debug("remote change event delivered", "kind", ev.Kind, "origin", ev.Origin)
	}
}

// invalidate drops brand cache entries a remote write made stale. Brands
// embed their products, so product and category writes count too. When the
// payload does not name the owning brand the whole brand cache goes.
func (c *EventConsumer) invalidate(ev models.ChangeEvent) {
	if c.brands == nil {
		return
	}
	ctx := context.Background()

	switch ev.Kind {
	case models.BrandCreated, models.BrandUpdated, models.BrandDeleted:
		if id, ok := intField(ev.Data, "id"); ok {
			c.brands.Invalidate(ctx, id)
			return
		}
		c.brands.InvalidateAll(ctx)
	case models.ProductCreated:
		if id, ok := intField(ev.Data, "brandId"); ok {
			c.brands.Invalidate(ctx, id)
			return
		}
		c.brands.InvalidateAll(ctx)
	case models.ProductUpdated, models.ProductDeleted, models.CategoryDeleted:
		// The previous owner of an updated product is not in the payload.
		c.brands.InvalidateAll(ctx)
	}
}

// intField reads a numeric field of a JSON-decoded object payload.
func intField(data any, name string) (int, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := m[name].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}
