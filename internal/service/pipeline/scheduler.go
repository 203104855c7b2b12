package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/observe"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
)

// SchedulerConfig controls queue aging.
type SchedulerConfig struct {
	// AgingInterval is the wait after which a job gains one priority level.
	AgingInterval time.Duration
	MaxPriority   int
}

// Scheduler owns the in-memory job queue and the set of recordings that
// currently have a job, queued or running. A recording has at most one job.
type Scheduler struct {
	log        *slog.Logger
	recordings recordingRepo
	audit      auditLog
	tx         txManager
	metrics    *observe.Metrics
	now        func() time.Time

	mu       sync.Mutex
	queue    jobQueue
	inflight map[uuid.UUID]struct{}
	seq      uint64

	// signal has capacity one; a send never blocks and at least one waiter
	// wakes per send.
	signal chan struct{}
}

// NewScheduler creates an empty scheduler. Call RecoverPending at startup to
// pick up recordings left pending by a previous process.
func NewScheduler(
	log *slog.Logger,
	recordings recordingRepo,
	auditLog auditLog,
	tx txManager,
	metrics *observe.Metrics,
	cfg SchedulerConfig,
) *Scheduler {
	if metrics == nil {
		metrics = observe.Noop()
	}
	return &Scheduler{
		log:        log.With("service", "scheduler"),
		recordings: recordings,
		audit:      auditLog,
		tx:         tx,
		metrics:    metrics,
		now:        time.Now,
		queue:      jobQueue{aging: cfg.AgingInterval, maxPriority: cfg.MaxPriority},
		inflight:   make(map[uuid.UUID]struct{}),
		signal:     make(chan struct{}, 1),
	}
}

// Enqueue queues a pending recording. The caller has already committed the
// recording together with its creation audit entry. It returns
// domain.ErrInvalidTransition when the recording is not pending and
// domain.ErrAlreadyExists when it already has a job.
func (s *Scheduler) Enqueue(ctx context.Context, recordingID uuid.UUID) error {
	rec, err := s.recordings.GetByID(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", recordingID, err)
	}
	if err := s.reserve(rec); err != nil {
		return fmt.Errorf("enqueue %s: %w", recordingID, err)
	}

	s.push(ctx, rec.ID, s.now())
	s.log.InfoContext(ctx, "recording enqueued", slog.String("recording_id", rec.ID.String()))
	return nil
}

// RecoverPending queues every pending recording that has no job yet, aged
// from its creation time. It returns how many were queued.
func (s *Scheduler) RecoverPending(ctx context.Context) (int, error) {
	return s.recover(ctx, time.Time{})
}

// Resync is RecoverPending restricted to recordings untouched for at least
// grace. It runs periodically so recordings reset by an operator tool in
// another process are picked up, while a submission that is between its
// commit and its Enqueue call is left to Enqueue.
func (s *Scheduler) Resync(ctx context.Context, grace time.Duration) (int, error) {
	return s.recover(ctx, s.now().Add(-grace))
}

func (s *Scheduler) recover(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.recordings.ListIDsByStatus(ctx, domain.RecordingStatusPending, 0)
	if err != nil {
		return 0, fmt.Errorf("recover pending: %w", err)
	}

	var n int
	for _, id := range ids {
		if s.HasJob(id) {
			continue
		}
		rec, err := s.recordings.GetByID(ctx, id)
		if err != nil {
			s.log.WarnContext(ctx, "recover: load recording",
				slog.String("recording_id", id.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !cutoff.IsZero() && rec.UpdatedAt.After(cutoff) {
			continue
		}
		if err := s.reserve(rec); err != nil {
			continue
		}
		s.push(ctx, rec.ID, rec.CreatedAt)
		n++
	}

	if n > 0 {
		s.log.InfoContext(ctx, "pending recordings recovered", slog.Int("count", n))
	}
	return n, nil
}

// Requeue resets a failed recording to pending and queues it. This is an
// operator action; failed jobs are never retried automatically.
func (s *Scheduler) Requeue(ctx context.Context, recordingID uuid.UUID, actorID *uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := s.recordings.GetByID(ctx, recordingID)
		if err != nil {
			return err
		}
		if err := s.recordings.ResetFailed(ctx, recordingID); err != nil {
			return err
		}

		after := *before
		after.Status = domain.RecordingStatusPending
		after.ProcessingError = nil

		_, err = s.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditRecordingUpdate,
			ActorID:      actorID,
			ResourceType: domain.ResourceRecording,
			ResourceID:   recordingID,
			Before:       audit.RecordingSnapshot(before),
			After:        audit.RecordingSnapshot(&after),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("requeue %s: %w", recordingID, err)
	}

	rec, err := s.recordings.GetByID(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("requeue %s: %w", recordingID, err)
	}
	if err := s.reserve(rec); err != nil {
		return fmt.Errorf("requeue %s: %w", recordingID, err)
	}
	s.push(ctx, rec.ID, s.now())

	s.log.InfoContext(ctx, "recording requeued", slog.String("recording_id", recordingID.String()))
	return nil
}

// Next blocks until a job is available or ctx is done.
func (s *Scheduler) Next(ctx context.Context) (*Job, error) {
	for {
		s.mu.Lock()
		job := s.queue.pop(s.now())
		more := s.queue.Len() > 0
		s.mu.Unlock()

		if job != nil {
			s.metrics.QueueDepth.Add(ctx, -1)
			if more {
				s.wake()
			}
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.signal:
		}
	}
}

// Done releases the recording's job slot.
func (s *Scheduler) Done(recordingID uuid.UUID) {
	s.mu.Lock()
	delete(s.inflight, recordingID)
	s.mu.Unlock()
}

// Queued returns the number of jobs waiting for a worker.
func (s *Scheduler) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// HasJob reports whether the recording is queued or being processed.
func (s *Scheduler) HasJob(recordingID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[recordingID]
	return ok
}

func (s *Scheduler) reserve(rec *domain.Recording) error {
	if rec.Status != domain.RecordingStatusPending {
		return fmt.Errorf("recording is %s: %w", rec.Status, domain.ErrInvalidTransition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[rec.ID]; ok {
		return fmt.Errorf("recording already has a job: %w", domain.ErrAlreadyExists)
	}
	s.inflight[rec.ID] = struct{}{}
	return nil
}

func (s *Scheduler) push(ctx context.Context, recordingID uuid.UUID, enqueuedAt time.Time) {
	s.mu.Lock()
	s.seq++
	s.queue.push(&Job{RecordingID: recordingID, EnqueuedAt: enqueuedAt, seq: s.seq}, s.now())
	s.mu.Unlock()

	s.metrics.QueueDepth.Add(ctx, 1)
	s.wake()
}

func (s *Scheduler) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}
