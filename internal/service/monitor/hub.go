package monitor

import (
	"context"
	"sync"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
)

// Hub fans alarm states out to subscribers.
// Each subscriber holds at most one state: a slow reader skips intermediate
// states and always receives the newest one.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan *alarm.State
	nextID uint64
}

// NewHub returns a hub without subscribers.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]chan *alarm.State),
	}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan *alarm.State, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan *alarm.State, 1)
	h.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish replaces whatever each subscriber has not read yet with state.
func (h *Hub) Publish(_ context.Context, state *alarm.State) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		// Only Publish sends and it holds the lock, so after the drain the send cannot block.
		select {
		case <-ch:
		default:
		}

		ch <- state.Clone()
	}

	return nil
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}
