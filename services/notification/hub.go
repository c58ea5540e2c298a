package notification

import (
	"context"
	"sync"

	"companionhub/models"
)

// Hub is an in-process Broker for single-instance deployments and tests.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]map[chan models.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[chan models.Notification]struct{})}
}

// Publish delivers to every listener that has buffer room; slow listeners miss the event.
func (h *Hub) Publish(_ context.Context, channel string, event models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.listeners[channel] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context, channel string) (<-chan models.Notification, error) {
	ch := make(chan models.Notification, 16)

	h.mu.Lock()
	if h.listeners[channel] == nil {
		h.listeners[channel] = make(map[chan models.Notification]struct{})
	}
	h.listeners[channel][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.listeners[channel], ch)
		if len(h.listeners[channel]) == 0 {
			delete(h.listeners, channel)
		}
		h.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Listeners reports how many subscriptions channel currently has.
func (h *Hub) Listeners(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[channel])
}
