package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/notify"
	"github.com/heartmarshall/voicedoc-backend/internal/observe"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
)

// Sweeper fails recordings stuck in processing, typically because the
// process holding them died. It never creates review items.
type Sweeper struct {
	log        *slog.Logger
	recordings recordingRepo
	tx         txManager
	audit      auditLog
	notifier   notify.Notifier
	metrics    *observe.Metrics
	staleAfter time.Duration
	now        func() time.Time
}

// NewSweeper creates a sweeper. notifier and metrics may be nil.
func NewSweeper(
	log *slog.Logger,
	recordings recordingRepo,
	tx txManager,
	auditLog auditLog,
	notifier notify.Notifier,
	metrics *observe.Metrics,
	staleAfter time.Duration,
) *Sweeper {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if metrics == nil {
		metrics = observe.Noop()
	}
	return &Sweeper{
		log:        log.With("service", "sweeper"),
		recordings: recordings,
		tx:         tx,
		audit:      auditLog,
		notifier:   notifier,
		metrics:    metrics,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Sweep fails every recording that has been processing for longer than the
// staleness window and returns them.
func (s *Sweeper) Sweep(ctx context.Context) ([]domain.Recording, error) {
	cutoff := s.now().Add(-s.staleAfter)

	var abandoned []domain.Recording
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		recs, err := s.recordings.AbandonStale(ctx, cutoff, AbandonedReason)
		if err != nil {
			return err
		}
		for i := range recs {
			before := recs[i]
			before.Status = domain.RecordingStatusProcessing
			before.ProcessingError = nil

			if _, err := s.audit.Append(ctx, domain.AuditEvent{
				Type:         domain.AuditRecordingFail,
				ResourceType: domain.ResourceRecording,
				ResourceID:   recs[i].ID,
				Before:       audit.RecordingSnapshot(&before),
				After:        audit.RecordingSnapshot(&recs[i]),
			}); err != nil {
				return err
			}
		}
		abandoned = recs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	at := s.now().UTC()
	for _, rec := range abandoned {
		s.metrics.RecordOutcome(ctx, observe.OutcomeAbandoned, time.Time{})
		s.notifier.Notify(ctx, notify.Event{
			UserID:      rec.UserID,
			RecordingID: rec.ID,
			Phase:       domain.PhaseFailed,
			Error:       AbandonedReason,
			At:          at,
		})
	}
	if len(abandoned) > 0 {
		s.log.WarnContext(ctx, "stale recordings abandoned",
			slog.Int("count", len(abandoned)),
			slog.Time("cutoff", cutoff),
		)
	}
	return abandoned, nil
}

// Run sweeps immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.ErrorContext(ctx, "sweep failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
