package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher publishes events as JSON on <prefix>.<user id>, so other
// services can follow one user's pipeline without polling.
type NATSPublisher struct {
	pub    msgPublisher
	prefix string
	log    *slog.Logger
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(pub msgPublisher, prefix string, log *slog.Logger) *NATSPublisher {
	return &NATSPublisher{
		pub:    pub,
		prefix: strings.TrimSuffix(prefix, "."),
		log:    log.With("component", "notify_nats"),
	}
}

// Connect dials url with reconnects enabled.
func Connect(url string, log *slog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("voicedoc"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
	)
}

// Subject returns the subject events of userID are published on.
func (p *NATSPublisher) Subject(ev Event) string {
	return p.prefix + "." + ev.UserID.String()
}

func (p *NATSPublisher) Notify(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		droppedEvents.WithLabelValues("nats").Inc()
		p.log.ErrorContext(ctx, "marshal event", slog.String("error", err.Error()))
		return
	}

	msg := nats.NewMsg(p.Subject(ev))
	msg.Header.Set("Phase", string(ev.Phase))
	msg.Data = data

	if err := p.pub.PublishMsg(msg); err != nil {
		droppedEvents.WithLabelValues("nats").Inc()
		p.log.WarnContext(ctx, "publish event",
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
	}
}
