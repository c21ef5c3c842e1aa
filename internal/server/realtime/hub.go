// Package realtime fans applied row changes out to the websocket subscribers
// of the row's owner.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/iudanet/lifedash/pkg/api"
)

// DefaultBuffer is the per-subscriber event queue length.
const DefaultBuffer = 64

// Subscription получает события одного пользователя
type Subscription struct {
	events  chan api.ChangeEvent
	dropped chan struct{}
	userID  string
	once    sync.Once
}

// Events returns the event stream.
func (s *Subscription) Events() <-chan api.ChangeEvent {
	return s.events
}

// Dropped is closed when the hub dropped the subscription because its queue
// was full.
func (s *Subscription) Dropped() <-chan struct{} {
	return s.dropped
}

// UserID returns the owner of the subscription.
func (s *Subscription) UserID() string {
	return s.userID
}

func (s *Subscription) drop() {
	s.once.Do(func() {
		close(s.dropped)
	})
}

// Hub хранит подписки по пользователям
type Hub struct {
	subs   map[string]map[*Subscription]struct{}
	logger *slog.Logger
	buffer int
	mu     sync.Mutex
}

// NewHub creates a hub. buffer <= 0 means DefaultBuffer.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscription for userID.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		userID:  userID,
		events:  make(chan api.ChangeEvent, h.buffer),
		dropped: make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	subscribersGauge.Inc()

	return sub
}

// Unsubscribe removes sub. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(sub)
}

// Publish delivers event to every subscriber of the row owner without
// blocking. A subscriber whose queue is full is dropped.
func (h *Hub) Publish(event api.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[event.Row.UserID] {
		select {
		case sub.events <- event:
			eventsTotal.WithLabelValues("sent").Inc()
		default:
			eventsTotal.WithLabelValues("dropped").Inc()
			h.logger.Warn("Realtime subscriber too slow, dropping", "user_id", sub.userID)
			h.removeLocked(sub)
			sub.drop()
		}
	}
}

// Subscribers returns the number of live subscriptions of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs[userID])
}

func (h *Hub) removeLocked(sub *Subscription) {
	set, ok := h.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.userID)
	}
	subscribersGauge.Dec()
}
