// Package eventbus is an in-process multicast channel for notification
// events. Publishers and subscribers share one *Bus that the caller creates
// and passes around; there is no package-level instance.
package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultBufferSize = 16

// Event is a notification describing something that happened to a user.
// Events are not persisted by the bus.
type Event struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"userId"`
	Title      string                 `json:"title,omitempty"`
	Body       string                 `json:"body,omitempty"`
	NavigateTo *string                `json:"navigateTo,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Severity   *string                `json:"severity,omitempty"`
	Type       *string                `json:"type,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// NewEventID returns a time-ordered unique id.
func NewEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Metrics receives bus activity. *metrics.Prom satisfies it.
type Metrics interface {
	SetSubscribers(n int)
	IncPublished()
	IncDelivered()
	IncDropped()
}

type noopMetrics struct{}

func (noopMetrics) SetSubscribers(int) {}
func (noopMetrics) IncPublished()      {}
func (noopMetrics) IncDelivered()      {}
func (noopMetrics) IncDropped()        {}

type Options struct {
	// BufferSize is the per-subscription queue length. Zero means
	// DefaultBufferSize.
	BufferSize int
	Metrics    Metrics
}

type Bus struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	closed  bool
	bufSize int
	metrics Metrics
}

func New(opts Options) *Bus {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	return &Bus{
		subs:    make(map[*Subscription]struct{}),
		bufSize: opts.BufferSize,
		metrics: opts.Metrics,
	}
}

// Publish offers ev to every attached subscription. It never blocks: a
// subscription whose queue is full misses the event.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.metrics.IncPublished()

	for sub := range b.subs {
		select {
		case sub.ch <- ev:
			b.metrics.IncDelivered()
		default:
			b.metrics.IncDropped()
		}
	}
}

// Subscribe attaches a listener that sees every event published from now on.
// The subscription is removed when ctx is done or Close is called, after which
// Events is closed.
func (b *Bus) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		bus:  b,
		ch:   make(chan Event, b.bufSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.closeOnce.Do(func() {
			close(sub.done)
			close(sub.ch)
		})
		return sub
	}
	b.subs[sub] = struct{}{}
	b.metrics.SetSubscribers(len(b.subs))
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

// Len reports the number of attached subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close detaches every subscription. Later publishes are ignored and later
// subscriptions start closed.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	b.metrics.SetSubscribers(len(b.subs))
}

type Subscription struct {
	bus       *Bus
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events yields events in publication order and is closed on detach.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Done is closed once the subscription has been detached.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		// Removing under the bus lock first guarantees no Publish is
		// mid-send on ch when it is closed.
		s.bus.remove(s)
		close(s.done)
		close(s.ch)
	})
}
