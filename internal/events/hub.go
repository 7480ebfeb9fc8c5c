package events

import (
	"sync"

	"github.com/govind/worker-portal-back/internal/domain"
)

const subscriberBuffer = 8

// Hub fans assignment events out to push subscribers keyed by worker
// id. Publishing never blocks: a subscriber that cannot keep up drops
// events and resynchronizes from the worker list on its next fetch.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan domain.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan domain.Event]struct{})}
}

// Subscribe registers a listener for one worker id. The returned
// cancel function must be called when the listener goes away.
func (h *Hub) Subscribe(workerID string) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

	h.mu.Lock()
	listeners, ok := h.subs[workerID]
	if !ok {
		listeners = make(map[chan domain.Event]struct{})
		h.subs[workerID] = listeners
	}
	listeners[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if listeners, ok := h.subs[workerID]; ok {
			delete(listeners, ch)
			if len(listeners) == 0 {
				delete(h.subs, workerID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Publish(event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.WorkerID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(workerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[workerID])
}
