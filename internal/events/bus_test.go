package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prudhivi99/guitar-store/internal/metrics"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func recv(t *testing.T, ch <-chan models.ChangeEvent) models.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.ChangeEvent{}
}

func assertClosed(t *testing.T, ch <-chan models.ChangeEvent) {
	t.Helper()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected closed channel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestSubscriberBeforeFirstPublishSeesAllInOrder(t *testing.T) {
	b := New()
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	for i := 1; i <= 5; i++ {
		b.Publish(models.ProductCreated, models.IDPayload{ID: i})
	}

	for i := 1; i <= 5; i++ {
		ev := recv(t, ch)
		assert.Equal(t, models.ProductCreated, ev.Kind)
		assert.Equal(t, models.IDPayload{ID: i}, ev.Data)
	}
}

func TestLateSubscriberGetsReplayThenLive(t *testing.T) {
	b := New()
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.Publish(models.BrandCreated, models.IDPayload{ID: 1})
	b.Publish(models.BrandCreated, models.IDPayload{ID: 2})

	ch := b.Subscribe(ctx)
	b.Publish(models.BrandCreated, models.IDPayload{ID: 3})

	assert.Equal(t, models.IDPayload{ID: 2}, recv(t, ch).Data)
	assert.Equal(t, models.IDPayload{ID: 3}, recv(t, ch).Data)

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestSubscribeWithoutHistoryYieldsNothing(t *testing.T) {
	b := New()
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
	_, ok := b.Last()
	assert.False(t, ok)
}

func TestBurstReachesIdleSubscriberInOrder(t *testing.T) {
	b := New()
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idle := b.Subscribe(ctx)
	busy := b.Subscribe(ctx)

	const burst = 100
	for i := 0; i < burst; i++ {
		b.Publish(models.OrderCreated, models.IDPayload{ID: i})
	}
	require.Equal(t, 2, b.SubscriberCount())

	for i := 0; i < burst; i++ {
		assert.Equal(t, models.IDPayload{ID: i}, recv(t, busy).Data)
	}
	// Nothing was read from idle while the burst was published.
	for i := 0; i < burst; i++ {
		assert.Equal(t, models.IDPayload{ID: i}, recv(t, idle).Data)
	}
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(models.OrderDeleted, models.IDPayload{ID: burst})
	assert.Equal(t, models.OrderDeleted, recv(t, idle).Kind)
}

func TestCancelDetachesSubscriber(t *testing.T) {
	b := New()
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.Subscribe(ctx)
	require.Equal(t, 1, b.SubscriberCount())

	cancel()
	assertClosed(t, ch)
	assert.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	// Publishing after the subscriber left must not panic.
	b.Publish(models.ReviewDeleted, models.IDPayload{ID: 1})
}

func TestShutdownClosesSubscribers(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := b.Subscribe(ctx)
	c := b.Subscribe(ctx)
	b.Shutdown()
	b.Shutdown()

	assertClosed(t, a)
	assertClosed(t, c)
	assertClosed(t, b.Subscribe(ctx))
	assert.Equal(t, 0, b.SubscriberCount())

	b.Publish(models.UserDeleted, models.IDPayload{ID: 1})
	_, ok := b.Last()
	assert.False(t, ok)
}

func TestObserversSeeLocalEventsOnly(t *testing.T) {
	b := New(WithOrigin("node-a"))
	defer b.Shutdown()

	var seen []string
	b.Observe(func(ev models.ChangeEvent) { seen = append(seen, ev.Kind) })

	b.Publish(models.CategoryCreated, models.NamedPayload{Name: "Bass", ID: 1})
	b.PublishRemote(models.ChangeEvent{Kind: models.CategoryDeleted, Data: models.IDPayload{ID: 2}, Origin: "node-b"})

	assert.Equal(t, []string{models.CategoryCreated}, seen)

	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, models.CategoryDeleted, last.Kind)
	assert.Equal(t, "node-b", last.Origin)
}

func TestPublishStampsOrigin(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := New(WithOrigin("node-a"))
	b.now = func() time.Time { return fixed }
	defer b.Shutdown()

	b.Publish(models.BrandDeleted, models.IDPayload{ID: 9})
	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, "node-a", last.Origin)
	assert.Equal(t, fixed, last.At)
	assert.Equal(t, "node-a", b.Origin())
	assert.NotEmpty(t, New().Origin())
}

func TestConcurrentPublishersKeepOneOrder(t *testing.T) {
	b := New()
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				b.Publish(fmt.Sprintf("p%d-created", p), i)
			}
		}(p)
	}
	wg.Wait()

	for i := 0; i < 40; i++ {
		a, c := recv(t, first), recv(t, second)
		assert.Equal(t, a.Kind, c.Kind)
		assert.Equal(t, a.Data, c.Data)
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	b := New(WithMetrics(m))
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.Subscribe(ctx)
	b.Publish(models.ProductDeleted, models.IDPayload{ID: 1})
	b.Publish(models.ProductDeleted, models.IDPayload{ID: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(models.ProductDeleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscribers))
}
