// Package alarm reports incidents that need an operator: audit chain
// integrity failures and worker panics.
package alarm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/heartmarshall/voicedoc-backend/internal/config"
)

// Sentry logs every alarm at error level and forwards it to Sentry. With an
// empty DSN events are only logged.
type Sentry struct {
	hub *sentry.Hub
	log *slog.Logger
}

// NewSentry builds the reporter on its own hub so tests and tools do not
// touch the global one. Call Flush before exit.
func NewSentry(cfg config.SentryConfig, release string, logger *slog.Logger) (*Sentry, error) {
	return newSentry(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          "voicedoc@" + release,
		AttachStacktrace: true,
	}, logger)
}

func newSentry(opts sentry.ClientOptions, logger *slog.Logger) (*Sentry, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &Sentry{
		hub: sentry.NewHub(client, sentry.NewScope()),
		log: logger.With("adapter", "alarm"),
	}, nil
}

// Raise records err with tags.
func (s *Sentry) Raise(ctx context.Context, err error, tags map[string]string) {
	attrs := make([]any, 0, len(tags)+1)
	attrs = append(attrs, slog.String("error", err.Error()))
	for k, v := range tags {
		attrs = append(attrs, slog.String(k, v))
	}
	s.log.ErrorContext(ctx, "alarm raised", attrs...)

	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		s.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be sent.
func (s *Sentry) Flush(timeout time.Duration) {
	if !s.hub.Flush(timeout) {
		s.log.Warn("failed to flush all sentry events")
	}
}
