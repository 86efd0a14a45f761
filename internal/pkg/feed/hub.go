// Package feed delivers live per-class post snapshots. A subscription gets
// the current snapshot on registration and a fresh one after every post
// creation, edit or deletion in its class. Snapshots are complete feed states
// ordered newest first, so a dropped intermediate delivery never corrupts a
// subscriber.
package feed

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/elihudev/elihudroom/internal/app/models"
)

// Hub maintains the set of active subscriptions per class
type Hub struct {
	// Registered subscriptions organized by class ID
	mu   sync.RWMutex
	subs map[int64]map[*Subscription]struct{}

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[int64]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a callback for a class feed. The callback fires once
// with the initial snapshot and again after every change until Unsubscribe.
// Callbacks for one subscription run sequentially on a dedicated goroutine.
func (h *Hub) Subscribe(classID int64, initial []*models.Post, fn func([]*models.Post)) *Subscription {
	sub := &Subscription{
		hub:     h,
		classID: classID,
		fn:      fn,
		ch:      make(chan []*models.Post, snapshotBuffer),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	if _, ok := h.subs[classID]; !ok {
		h.subs[classID] = make(map[*Subscription]struct{})
	}
	h.subs[classID][sub] = struct{}{}
	// Enqueue the initial snapshot under the lock so a concurrent Publish
	// cannot slip in between registration and the first delivery.
	sub.push(initial)
	h.mu.Unlock()

	go sub.run()

	h.logger.Debug().
		Int64("classID", classID).
		Msg("Feed subscription registered")

	return sub
}

// Publish fans a fresh snapshot out to every subscription in a class
func (h *Hub) Publish(classID int64, posts []*models.Post) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subs[classID]
	if !ok {
		return
	}

	for sub := range subs {
		sub.push(posts)
	}

	h.logger.Debug().
		Int64("classID", classID).
		Int("subscriberCount", len(subs)).
		Int("postCount", len(posts)).
		Msg("Feed snapshot published")
}

// CloseClass cancels every subscription in a class. Called when the class
// itself is deleted.
func (h *Hub) CloseClass(classID int64) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs[classID]))
	for sub := range h.subs[classID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	if len(subs) > 0 {
		h.logger.Debug().
			Int64("classID", classID).
			Int("subscriberCount", len(subs)).
			Msg("Feed subscriptions closed with class")
	}
}

// SubscriberCount returns the number of active subscriptions for a class
func (h *Hub) SubscriberCount(classID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[classID])
}

// remove drops a subscription from the registry
func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[sub.classID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subs, sub.classID)
		}
	}

	h.logger.Debug().
		Int64("classID", sub.classID).
		Msg("Feed subscription removed")
}
