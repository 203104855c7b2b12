package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Arceliar/phony"
	"github.com/google/uuid"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Hub fans events out to in-process subscribers, keyed by user. All state
// is owned by the actor; a full subscriber channel drops the event rather
// than blocking the pipeline.
type Hub struct {
	phony.Inbox
	log    *slog.Logger
	buffer int
	subs   map[uuid.UUID]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan Event
}

// NewHub creates a hub. A non-positive buffer uses DefaultBuffer.
func NewHub(log *slog.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		log:    log.With("component", "notify_hub"),
		buffer: buffer,
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
	}
}

// Subscribe registers a listener for userID's events. The returned cancel
// func unregisters it and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, h.buffer)}
	phony.Block(h, func() {
		set, ok := h.subs[userID]
		if !ok {
			set = make(map[*subscriber]struct{})
			h.subs[userID] = set
		}
		set[sub] = struct{}{}
	})

	cancel := sync.OnceFunc(func() {
		phony.Block(h, func() {
			set := h.subs[userID]
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
			close(sub.ch)
		})
	})
	return sub.ch, cancel
}

// Notify queues ev for every subscriber of ev.UserID and returns at once.
func (h *Hub) Notify(_ context.Context, ev Event) {
	h.Act(nil, func() {
		for sub := range h.subs[ev.UserID] {
			select {
			case sub.ch <- ev:
			default:
				droppedEvents.WithLabelValues("hub").Inc()
				h.log.Debug("subscriber full, event dropped",
					slog.String("user_id", ev.UserID.String()),
					slog.String("phase", string(ev.Phase)),
				)
			}
		}
	})
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID uuid.UUID) int {
	var n int
	phony.Block(h, func() { n = len(h.subs[userID]) })
	return n
}
