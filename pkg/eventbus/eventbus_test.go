package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	mu          sync.Mutex
	subscribers int
	published   int
	delivered   int
	dropped     int
}

func (m *countingMetrics) SetSubscribers(n int) { m.mu.Lock(); m.subscribers = n; m.mu.Unlock() }
func (m *countingMetrics) IncPublished()        { m.mu.Lock(); m.published++; m.mu.Unlock() }
func (m *countingMetrics) IncDelivered()        { m.mu.Lock(); m.delivered++; m.mu.Unlock() }
func (m *countingMetrics) IncDropped()          { m.mu.Lock(); m.dropped++; m.mu.Unlock() }

func (m *countingMetrics) snapshot() (int, int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribers, m.published, m.delivered, m.dropped
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertNothing(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishReachesSubscriber(t *testing.T) {
	bus := New(Options{})
	sub := bus.Subscribe(context.Background())
	defer sub.Close()

	ev := Event{ID: NewEventID(), UserID: "u1", Title: "hello"}
	bus.Publish(ev)

	assert.Equal(t, ev, receive(t, sub))
}

func TestBus_FanOutToAllSubscribers(t *testing.T) {
	bus := New(Options{})
	subs := []*Subscription{
		bus.Subscribe(context.Background()),
		bus.Subscribe(context.Background()),
		bus.Subscribe(context.Background()),
	}

	ev := Event{ID: NewEventID(), UserID: "u1"}
	bus.Publish(ev)

	for _, sub := range subs {
		assert.Equal(t, ev.ID, receive(t, sub).ID)
		sub.Close()
	}
}

func TestBus_NoBacklogForLateSubscriber(t *testing.T) {
	bus := New(Options{})
	bus.Publish(Event{ID: "early", UserID: "u1"})

	sub := bus.Subscribe(context.Background())
	defer sub.Close()

	assertNothing(t, sub)

	bus.Publish(Event{ID: "late", UserID: "u1"})
	assert.Equal(t, "late", receive(t, sub).ID)
}

func TestBus_PublicationOrderPreserved(t *testing.T) {
	bus := New(Options{BufferSize: 64})
	sub := bus.Subscribe(context.Background())
	defer sub.Close()

	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		bus.Publish(Event{ID: id})
	}

	for _, id := range ids {
		assert.Equal(t, id, receive(t, sub).ID)
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	m := &countingMetrics{}
	bus := New(Options{BufferSize: 1, Metrics: m})
	slow := bus.Subscribe(context.Background())
	defer slow.Close()
	fast := bus.Subscribe(context.Background())
	defer fast.Close()

	bus.Publish(Event{ID: "1"})
	assert.Equal(t, "1", receive(t, fast).ID)

	done := make(chan struct{})
	go func() {
		bus.Publish(Event{ID: "2"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Equal(t, "2", receive(t, fast).ID)
	assert.Equal(t, "1", receive(t, slow).ID)
	assertNothing(t, slow)

	_, published, delivered, dropped := m.snapshot()
	assert.Equal(t, 2, published)
	assert.Equal(t, 3, delivered)
	assert.Equal(t, 1, dropped)
}

func TestBus_ContextCancelDetaches(t *testing.T) {
	m := &countingMetrics{}
	bus := New(Options{Metrics: m})
	ctx, cancel := context.WithCancel(context.Background())
	sub := bus.Subscribe(ctx)
	assert.Equal(t, 1, bus.Len())

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not detached after cancel")
	}
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Len())

	subscribers, _, _, _ := m.snapshot()
	assert.Equal(t, 0, subscribers)

	// publishing after detach must not panic
	bus.Publish(Event{ID: "after"})
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	bus := New(Options{})
	sub := bus.Subscribe(context.Background())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, bus.Len())
}

func TestBus_CloseDetachesEveryone(t *testing.T) {
	bus := New(Options{})
	a := bus.Subscribe(context.Background())
	b := bus.Subscribe(context.Background())

	bus.Close()

	_, okA := <-a.Events()
	_, okB := <-b.Events()
	assert.False(t, okA)
	assert.False(t, okB)

	late := bus.Subscribe(context.Background())
	_, ok := <-late.Events()
	assert.False(t, ok)

	bus.Publish(Event{ID: "ignored"})
	assert.Equal(t, 0, bus.Len())
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := New(Options{BufferSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := bus.Subscribe(ctx)
			for j := 0; j < 10; j++ {
				select {
				case <-sub.Events():
				case <-time.After(time.Millisecond):
				}
			}
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(Event{ID: NewEventID()})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.Len())
}

func TestNewEventID_Ordered(t *testing.T) {
	a := NewEventID()
	time.Sleep(2 * time.Millisecond)
	b := NewEventID()

	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
