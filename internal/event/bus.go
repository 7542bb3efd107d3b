package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	log         *slog.Logger
}

func NewBus(log *slog.Logger) *InMemoryBus {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryBus{
		subscribers: make(map[string]chan Event),
		log:         log.With("component", "event_bus"),
	}
}

// Publish fans e out without blocking. Subscribers with a full buffer miss it.
func (b *InMemoryBus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			b.log.Warn("event dropped for slow subscriber", "subscriber", id, "type", e.Type)
		}
	}
}

func (b *InMemoryBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Notify publishes a toast, optionally for a single session, and returns the
// event id. A nil bus publishes nothing and returns "".
func Notify(bus Bus, typ Type, sessionID string, toast Toast) string {
	if bus == nil {
		return ""
	}
	id := uuid.NewString()
	bus.Publish(Event{ID: id, Type: typ, SessionID: sessionID, Toast: toast})
	return id
}

// Broadcast publishes a toast to every session except origin.
func Broadcast(bus Bus, typ Type, origin string, toast Toast) {
	if bus == nil {
		return
	}
	bus.Publish(Event{Type: typ, Origin: origin, Toast: toast})
}
