package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"tradewire/internal/domain"
)

// ErrUnsubscribed is returned by Next once a subscriber has been removed
// from the hub and its queue is drained.
var ErrUnsubscribed = errors.New("stream: subscriber is no longer registered")

// Subscriber is a handle to a live event stream. Events published while
// the subscriber is registered are delivered in publish order through an
// unbounded per-subscriber queue; a subscriber never sees events published
// before it joined.
type Subscriber struct {
	id uuid.UUID

	mu     sync.Mutex
	queue  []domain.TradeEvent
	closed bool
	wake   chan struct{}
}

// ID returns the subscriber's registration identity.
func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// Next blocks until an event is available, the context is cancelled, or
// the subscriber is unsubscribed. Queued events are drained before
// ErrUnsubscribed is reported.
func (s *Subscriber) Next(ctx context.Context) (domain.TradeEvent, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			event := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return event, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return domain.TradeEvent{}, ErrUnsubscribed
		}

		select {
		case <-ctx.Done():
			return domain.TradeEvent{}, ctx.Err()
		case <-s.wake:
		}
	}
}

// push enqueues an event. It never blocks: the queue is unbounded and the
// wake signal is best-effort (Next re-checks the queue on every pass).
func (s *Subscriber) push(event domain.TradeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, event)
	s.mu.Unlock()
	s.notify()
}

// close marks the subscriber as removed and wakes any blocked Next.
func (s *Subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notify()
}

func (s *Subscriber) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Hub owns the set of live subscribers and fans published trade events
// out to all of them. Registration, deregistration and publishing are
// safe under concurrent use; a slow or disconnecting subscriber never
// affects delivery to the others or the publisher itself.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscriber
}

// NewHub creates an empty subscriber hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]*Subscriber),
	}
}

// Subscribe registers a new subscriber with an empty delivery queue
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		id:   uuid.New(),
		wake: make(chan struct{}, 1),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscriber from the active set. Idempotent and
// safe to call concurrently with an in-flight Publish.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()

	sub.close()
}

// Publish delivers an event to every currently-registered subscriber in
// publish order. Delivery to each subscriber is independent and never
// blocks the caller.
func (h *Hub) Publish(event domain.TradeEvent) {
	// push never blocks, so holding the read lock for the whole fan-out
	// is cheap and keeps enqueue order consistent per subscriber.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		sub.push(event)
	}
}

// SubscriberCount returns the number of currently-registered subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
