package notify

import (
	"sync"
	"sync/atomic"

	"newsdesk/internal/model"

	"go.uber.org/zap"
)

// Sink receives lifecycle events from the orchestrator. It decouples the
// publication core from any particular transport.
type Sink interface {
	Emit(event model.Event)
}

// Hub is an in-memory fan-out sink: every currently connected subscriber
// gets each event, best-effort. There is no backlog or replay; a subscriber
// that connects after an event never sees it, and a slow subscriber whose
// buffer is full drops it.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan model.Event
	seq    atomic.Uint64
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[uint64]chan model.Event),
		logger: logger,
	}
}

// Emit broadcasts the event to all subscribers without blocking.
func (h *Hub) Emit(event model.Event) {
	// Snapshot subscribers so sends happen outside the lock.
	h.mu.RLock()
	chs := make([]chan model.Event, 0, len(h.subs))
	for _, ch := range h.subs {
		chs = append(chs, ch)
	}
	h.mu.RUnlock()

	for _, ch := range chs {
		// A subscriber may unsubscribe (and close) concurrently; recover
		// covers the send-on-closed-channel window.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- event:
			default:
				h.logger.Warn("Dropping event for slow observer",
					zap.String("kind", string(event.Kind)),
					zap.String("article_id", event.ID.String()))
			}
		}()
	}
}

// Subscribe registers an observer and returns its channel plus an
// unsubscribe func. The returned func is safe to call more than once.
func (h *Hub) Subscribe(buffer int) (<-chan model.Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan model.Event, buffer)
	id := h.seq.Add(1)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
