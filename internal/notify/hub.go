package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/pkg/clock"
)

// Event is one emitted notification.
type Event struct {
	Name      string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// Hub broadcasts events to in-process subscribers. Emit never blocks: a
// subscriber whose queue is full loses its oldest queued event.
type Hub struct {
	logger logging.Logger
	clock  clock.Clock

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan Event
}

// NewHub creates a hub with no subscribers.
func NewHub(logger logging.Logger, c clock.Clock) *Hub {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	if c == nil {
		c = clock.RealClock{}
	}
	return &Hub{logger: logger, clock: c, subs: make(map[uint64]chan Event)}
}

// Emit encodes payload and queues it for every subscriber.
func (h *Hub) Emit(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return &Error{Event: event, Err: err}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return &Error{Event: event, Err: err}
	}
	ev := Event{Name: event, Payload: raw, EmittedAt: h.clock.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		if offer(ch, ev) {
			continue
		}
		h.logger.Warn("Subscriber queue full, dropped oldest event",
			zap.Uint64("subscriber_id", id),
			zap.String("event", event),
		)
	}
	return nil
}

// offer queues ev, evicting the oldest queued event when full. It reports
// whether nothing was dropped.
func offer(ch chan Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
	return false
}

// Subscribe returns a channel of events and a function that unsubscribes and
// closes it. The queue holds at most size events.
func (h *Hub) Subscribe(size int) (<-chan Event, func()) {
	if size < 1 {
		size = 1
	}
	ch := make(chan Event, size)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
