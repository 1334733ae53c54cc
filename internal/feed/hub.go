// Package feed fans recorded exchanges out to live websocket observers.
package feed

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ent0n29/aanyaa/internal/observability"
)

const defaultBuffer = 64

// Subscriber receives encoded events until it is unsubscribed or dropped.
type Subscriber struct {
	ID   string
	send chan []byte
}

// Messages is closed when the subscriber leaves the hub.
func (s *Subscriber) Messages() <-chan []byte { return s.send }

// Hub broadcasts events to every subscriber. Publishing never blocks: a
// subscriber whose buffer is full is dropped.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscriber]struct{}
	buffer  int
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewHub(logger *slog.Logger, metrics *observability.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:    make(map[*Subscriber]struct{}),
		buffer:  defaultBuffer,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{ID: uuid.NewString(), send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.SetFeedSubscribers(n)
	h.logger.Info("feed_subscribed", "subscriber_id", s.ID, "subscribers", n)
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	removed := h.removeLocked(s)
	n := len(h.subs)
	h.mu.Unlock()
	if removed {
		h.metrics.SetFeedSubscribers(n)
		h.logger.Info("feed_unsubscribed", "subscriber_id", s.ID, "subscribers", n)
	}
}

func (h *Hub) removeLocked(s *Subscriber) bool {
	if _, ok := h.subs[s]; !ok {
		return false
	}
	delete(h.subs, s)
	close(s.send)
	return true
}

// Publish encodes v once and offers it to every subscriber.
func (h *Hub) Publish(v any) {
	if h == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("feed_marshal_error", "error", err)
		return
	}

	h.mu.Lock()
	var dropped []string
	for s := range h.subs {
		select {
		case s.send <- data:
		default:
			h.removeLocked(s)
			dropped = append(dropped, s.ID)
		}
	}
	n := len(h.subs)
	h.mu.Unlock()

	if len(dropped) > 0 {
		h.metrics.SetFeedSubscribers(n)
		for _, id := range dropped {
			h.logger.Warn("feed_subscriber_dropped", "subscriber_id", id, "reason", "buffer_full")
		}
	}
}

func (h *Hub) Count() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
