package notification

import (
	"sync"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
	"library-backend/pkg/logger"
)

// Subscriber is one live connection receiving inventory change events.
// Events arrive on a buffered channel; the channel is closed exactly once,
// on unsubscribe or hub shutdown.
type Subscriber struct {
	ID     uuid.UUID
	events chan model.ChangeEvent
}

// Events is the receive side of the subscriber's feed.
func (s *Subscriber) Events() <-chan model.ChangeEvent {
	return s.events
}

// Hub maintains the set of live subscribers and fans committed inventory
// changes out to all of them.
//
// Delivery guarantees:
//   - every subscriber registered when Publish is called receives the event,
//     or is evicted for not keeping up - one slow consumer never blocks the
//     publish path or the other subscribers;
//   - a subscriber that connects after an event was published never sees it
//     (no backlog, no replay);
//   - events from one Publish caller are forwarded in call order, so callers
//     that serialize their commits per book get per-book FIFO delivery.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]*Subscriber
	bufferSize  int
	closed      bool
}

func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		subscribers: make(map[uuid.UUID]*Subscriber),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new subscriber with no backlog.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New(),
		events: make(chan model.ChangeEvent, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		// Hub is shutting down; hand back an already-closed feed so the
		// caller's read loop ends immediately.
		close(sub.events)
		return sub
	}

	h.subscribers[sub.ID] = sub

	logger.Debug("subscriber connected")
	return sub
}

// Unsubscribe removes a subscriber and closes its feed. Idempotent: calling
// it twice, or for a subscriber the hub already evicted, is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscriber) {
	if _, ok := h.subscribers[sub.ID]; !ok {
		return
	}
	delete(h.subscribers, sub.ID)
	close(sub.events)
}

// Publish delivers the event to every currently-registered subscriber.
// The send per subscriber is non-blocking: a full buffer means the consumer
// is dead or too slow, and it gets evicted instead of stalling the rest.
// Failures here are local to the hub and never reach the mutation caller.
func (h *Hub) Publish(event model.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	var evicted []*Subscriber
	for _, sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			evicted = append(evicted, sub)
		}
	}

	for _, sub := range evicted {
		logger.Warn("evicting slow subscriber", map[string]interface{}{
			"subscriber_id": sub.ID.String(),
			"event_kind":    string(event.Kind),
		})
		h.removeLocked(sub)
	}
}

// Len reports the current number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close evicts every subscriber and rejects new ones. Used on shutdown so
// long-lived connection handlers drain and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, sub := range h.subscribers {
		close(sub.events)
	}
	h.subscribers = make(map[uuid.UUID]*Subscriber)
}
