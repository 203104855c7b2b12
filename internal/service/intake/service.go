// Package intake accepts uploaded recordings: it stores the audio, creates
// the pending Recording and hands it to the scheduler.
package intake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/blob"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
	"github.com/heartmarshall/voicedoc-backend/pkg/ctxutil"
)

type audioStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

type recordingRepo interface {
	Create(ctx context.Context, rec *domain.Recording) error
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Recording, error)
}

type auditLog interface {
	Append(ctx context.Context, ev domain.AuditEvent) (*domain.AuditEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type scheduler interface {
	Enqueue(ctx context.Context, recordingID uuid.UUID) error
}

// Service implements recording intake.
type Service struct {
	log        *slog.Logger
	audio      audioStore
	recordings recordingRepo
	audit      auditLog
	tx         txManager
	scheduler  scheduler
	now        func() time.Time
}

// NewService creates an intake service.
func NewService(
	log *slog.Logger,
	audio audioStore,
	recordings recordingRepo,
	auditLog auditLog,
	tx txManager,
	sched scheduler,
) *Service {
	return &Service{
		log:        log.With("service", "intake"),
		audio:      audio,
		recordings: recordings,
		audit:      auditLog,
		tx:         tx,
		scheduler:  sched,
		now:        time.Now,
	}
}

// Submit stores the audio and queues a new recording for processing. The
// recording row and its recording.create audit entry commit together, before
// the enqueue, so a worker never sees a row that does not exist yet. Once
// committed the submission has succeeded: if enqueueing fails the recording
// stays pending and is picked up by the scheduler's next resync.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.Recording, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	capturedAt := now
	if input.CapturedAt != nil {
		capturedAt = input.CapturedAt.UTC()
	}

	rec := &domain.Recording{
		ID:              uuid.New(),
		UserID:          userID,
		PatientID:       input.PatientID,
		ContextKind:     input.ContextKind,
		DurationSeconds: input.DurationSeconds,
		CapturedAt:      capturedAt,
		Status:          domain.RecordingStatusPending,
		ChunkCount:      input.ChunkCount,
		StreamSessionID: input.StreamSessionID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	rec.AudioRef = blob.NewKey(rec.ID, capturedAt, input.Filename)

	if err := s.audio.Put(ctx, rec.AudioRef, input.Audio, input.Size); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.recordings.Create(ctx, rec); err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditRecordingCreate,
			ActorID:      &userID,
			ResourceType: domain.ResourceRecording,
			ResourceID:   rec.ID,
			After:        audit.RecordingSnapshot(rec),
		})
		return err
	})
	if err != nil {
		if derr := s.audio.Delete(context.WithoutCancel(ctx), rec.AudioRef); derr != nil {
			s.log.WarnContext(ctx, "orphaned audio",
				slog.String("audio_ref", rec.AudioRef),
				slog.String("error", derr.Error()),
			)
		}
		return nil, fmt.Errorf("create recording: %w", err)
	}
	if err := s.scheduler.Enqueue(ctx, rec.ID); err != nil {
		s.log.WarnContext(ctx, "enqueue deferred to resync",
			slog.String("recording_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "recording accepted",
		slog.String("user_id", userID.String()),
		slog.String("recording_id", rec.ID.String()),
		slog.String("context_kind", string(rec.ContextKind)),
		slog.Int64("bytes", input.Size),
	)
	return rec, nil
}

// Get returns one of the caller's recordings.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Recording, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	rec, err := s.recordings.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	return rec, nil
}
