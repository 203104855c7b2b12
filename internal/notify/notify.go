// Package notify delivers pipeline phase events to interested clients.
// Delivery is best effort: a notifier never reports failure to its caller.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// Event is one phase transition of a recording.
type Event struct {
	UserID      uuid.UUID    `json:"user_id"`
	RecordingID uuid.UUID    `json:"recording_id"`
	ReviewID    *uuid.UUID   `json:"review_id,omitempty"`
	Phase       domain.Phase `json:"phase"`
	Error       string       `json:"error,omitempty"`
	At          time.Time    `json:"at"`
}

// Notifier publishes events.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

var droppedEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "voicedoc",
		Subsystem: "notify",
		Name:      "dropped_events_total",
		Help:      "Phase events that could not be delivered, by sink.",
	},
	[]string{"sink"},
)

func init() {
	prometheus.MustRegister(droppedEvents)
}
