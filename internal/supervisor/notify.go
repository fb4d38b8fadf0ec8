package supervisor

import (
	"sync"
	"time"

	"mcpkeep/internal/api"
)

// EventType identifies a supervisor notification.
type EventType string

const (
	EventStatus EventType = "status"
	EventReady  EventType = "ready"
	EventError  EventType = "error"
	EventLog    EventType = "log"
)

// Event is delivered to subscribers. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType        `json:"type"`
	Time     time.Time        `json:"time"`
	Status   api.ServiceState `json:"status,omitempty"`
	Error    string           `json:"error,omitempty"`
	Endpoint string           `json:"endpoint,omitempty"`
	Stream   string           `json:"stream,omitempty"`
	Line     string           `json:"line,omitempty"`
}

// DefaultSubscriberBuffer is used when Subscribe is given a non-positive size.
const DefaultSubscriberBuffer = 256

// Hub fans events out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber that has room.
func (h *Hub) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
