// Package events implements the in-process notification bus that carries
// change events from services to push connections.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhivi99/guitar-store/internal/metrics"
	"github.com/prudhivi99/guitar-store/internal/models"
)

// Observer is called for every locally published event while the bus lock
// is held. It must not block or call back into the bus.
type Observer func(models.ChangeEvent)

// Bus is a broadcast channel with a one-slot replay buffer. Every subscriber
// sees the events in the same order. Each subscriber has its own unbounded
// queue so a slow reader never stalls the publisher and never loses events.
type Bus struct {
	mu        sync.Mutex
	subs      map[*subscriber]struct{}
	last      *models.ChangeEvent
	done      chan struct{}
	origin    string
	observers []Observer
	metrics   *metrics.Metrics
	now       func() time.Time
}

// subscriber queues events until its pump hands them to out.
type subscriber struct {
	mu    sync.Mutex
	queue []models.ChangeEvent
	wake  chan struct{}
	out   chan models.ChangeEvent
}

func newSubscriber() *subscriber {
	return &subscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan models.ChangeEvent),
	}
}

func (s *subscriber) push(ev models.ChangeEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pop() (models.ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.ChangeEvent{}, false
	}
	ev := s.queue[0]
	s.queue[0] = models.ChangeEvent{}
	s.queue = s.queue[1:]
	return ev, true
}

// pump delivers queued events in order until ctx or done ends, then closes out.
func (s *subscriber) pump(ctx context.Context, done <-chan struct{}) {
	defer close(s.out)
	for {
		ev, ok := s.pop()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		select {
		case s.out <- ev:
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

type Option func(*Bus)

// WithOrigin sets the instance id stamped on local events.
func WithOrigin(id string) Option {
	return func(b *Bus) { b.origin = id }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// New creates a bus. Without WithOrigin a random instance id is used.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs: make(map[*subscriber]struct{}),
		done: make(chan struct{}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.origin == "" {
		b.origin = uuid.NewString()
	}
	return b
}

// Origin returns the instance id of this bus.
func (b *Bus) Origin() string {
	return b.origin
}

// Observe registers fn to be called for every event published with Publish.
// Events arriving through PublishRemote are not observed.
func (b *Bus) Observe(fn Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Publish broadcasts a new local event. It never blocks and never fails.
func (b *Bus) Publish(kind string, payload any) {
	ev := models.ChangeEvent{
		Kind:   kind,
		Data:   payload,
		Origin: b.origin,
		At:     b.now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		return
	}
	b.broadcast(ev)
	for _, fn := range b.observers {
		fn(ev)
	}
}

// PublishRemote broadcasts an event that was produced by another instance.
func (b *Bus) PublishRemote(ev models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		return
	}
	b.broadcast(ev)
}

// broadcast updates the replay slot and fans out. Caller holds mu.
func (b *Bus) broadcast(ev models.ChangeEvent) {
	b.last = &ev
	for sub := range b.subs {
		sub.push(ev)
	}
	if b.metrics != nil {
		b.metrics.EventsPublished.WithLabelValues(ev.Kind).Inc()
		b.metrics.Subscribers.Set(float64(len(b.subs)))
	}
}

// Subscribe attaches a new subscriber. The channel yields the most recent
// event, if any, and then every later one. It is closed when ctx ends or when
// the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context) <-chan models.ChangeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan models.ChangeEvent)
		close(ch)
		return ch
	}

	sub := newSubscriber()
	if b.last != nil {
		sub.push(*b.last)
	}
	b.subs[sub] = struct{}{}
	b.gauge()

	go func() {
		sub.pump(ctx, b.done)

		b.mu.Lock()
		defer b.mu.Unlock()
		// Shutdown already cleared the set.
		if _, ok := b.subs[sub]; !ok {
			return
		}
		delete(b.subs, sub)
		b.gauge()
	}()

	return sub.out
}

// Last returns the event held in the replay slot.
func (b *Bus) Last() (models.ChangeEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return models.ChangeEvent{}, false
	}
	return *b.last, true
}

func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Shutdown detaches every subscriber and closes their channels. Later
// publishes are ignored and later subscriptions get an already closed channel.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		return
	}
	close(b.done)
	clear(b.subs)
	b.gauge()
}

func (b *Bus) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *Bus) gauge() {
	if b.metrics != nil {
		b.metrics.Subscribers.Set(float64(len(b.subs)))
	}
}
