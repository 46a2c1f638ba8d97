// Package stream fans committed ledger events out to live subscribers.
package stream

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

const defaultBuffer = 64

// Hub is an in-process EventPublisher. A subscriber that cannot keep up is
// dropped and its channel closed rather than stalling the dispatcher.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan domain.Event
	nextID int
	buffer int
	closed bool
	logger *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[int]chan domain.Event),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe returns a channel of events and a function that ends the
// subscription. The channel is closed when the subscription ends.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan domain.Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	return ch, func() { h.remove(id) }
}

func (h *Hub) Publish(ctx context.Context, events []domain.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
				continue
			default:
			}
			h.logger.Warn("dropping slow event subscriber", "subscriber", id, "seq", ev.Seq)
			delete(h.subs, id)
			close(ch)
			break
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}
