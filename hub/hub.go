package hub

import (
	"sync"

	"github.com/google/uuid"
	"checkin-backend/models"
)

// DefaultBuffer is the per-subscriber queue depth used when the configured
// value is zero or negative.
const DefaultBuffer = 16

// Subscriber is one live dashboard connection. The transport layer drains
// Events and must call Unsubscribe when the connection drops.
type Subscriber struct {
	eventID uuid.UUID
	ch      chan models.ArrivalEvent
}

// Events is the channel arrival events are delivered on. It is closed by
// Unsubscribe.
func (s *Subscriber) Events() <-chan models.ArrivalEvent {
	return s.ch
}

// Hub fans arrival events out to the dashboards subscribed to each event.
// Delivery is best-effort and at-most-once: a subscriber whose queue is full
// misses the event and resynchronizes from the stats poll.
type Hub struct {
	buffer int

	mu   sync.Mutex
	subs map[uuid.UUID]map[*Subscriber]struct{}
}

func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[uuid.UUID]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new live connection for an event.
func (h *Hub) Subscribe(eventID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		eventID: eventID,
		ch:      make(chan models.ArrivalEvent, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[eventID] == nil {
		h.subs[eventID] = make(map[*Subscriber]struct{})
	}
	h.subs[eventID][sub] = struct{}{}
	return sub
}

// Unsubscribe releases a connection and closes its channel. Calling it more
// than once is harmless.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.eventID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.eventID)
	}
	close(sub.ch)
}

// Publish delivers an arrival event to every current subscriber of the
// event. The lock is held through delivery so publishes for one event reach
// each subscriber in the order they were made; sends never block, a full
// queue drops the event for that subscriber only.
func (h *Hub) Publish(eventID uuid.UUID, ev models.ArrivalEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[eventID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the live connections for an event.
func (h *Hub) SubscriberCount(eventID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[eventID])
}
