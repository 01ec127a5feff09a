package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/guitar-store/internal/events"
	"github.com/prudhivi99/guitar-store/internal/logger"
	"github.com/prudhivi99/guitar-store/internal/models"
)

type fakeExchange struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func (f *fakeExchange) PublishToExchange(_ context.Context, exchange string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("channel closed")
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeExchange) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestEventRelayForwardsLocalEvents(t *testing.T) {
	mq := &fakeExchange{}
	relay := NewEventRelay(mq, "catalog.events", logger.Discard())
	bus := events.New(events.WithOrigin("node-a"))
	bus.Observe(relay.Enqueue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	bus.Publish(models.BrandCreated, models.NamedPayload{Name: "Fender", ID: 1})
	bus.PublishRemote(models.ChangeEvent{Kind: models.BrandDeleted, Origin: "node-b"})

	require.Eventually(t, func() bool { return mq.count() == 1 }, time.Second, 5*time.Millisecond)
	// The remote event must not come back out.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, mq.count())

	var ev struct {
		Type   string `json:"type"`
		Origin string `json:"origin"`
		Data   struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	mq.mu.Lock()
	require.NoError(t, json.Unmarshal(mq.messages[0], &ev))
	mq.mu.Unlock()
	assert.Equal(t, models.BrandCreated, ev.Type)
	assert.Equal(t, "node-a", ev.Origin)
	assert.Equal(t, "Fender", ev.Data.Name)
}

func TestEventRelayDropsWhenBehind(t *testing.T) {
	relay := NewEventRelay(&fakeExchange{}, "catalog.events", logger.Discard())

	for i := 0; i < relayBuffer+5; i++ {
		relay.Enqueue(models.ChangeEvent{Kind: models.ProductUpdated})
	}
	assert.Equal(t, int64(5), relay.Dropped())
}

func TestEventRelaySurvivesPublishErrors(t *testing.T) {
	mq := &fakeExchange{fail: true}
	relay := NewEventRelay(mq, "catalog.events", logger.Discard())
	relay.Enqueue(models.ChangeEvent{Kind: models.OrderCreated})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(relay.queue) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Zero(t, mq.count())
}
