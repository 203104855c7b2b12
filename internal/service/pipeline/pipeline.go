// Package pipeline schedules recordings and drives each one through
// transcription, analysis and the review item commit.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/transcribe"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/analysis"
)

// AbandonedReason is the processing error set by the staleness sweep.
const AbandonedReason = "abandoned: exceeded staleness window"

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type recordingRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recording, error)
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ResetFailed(ctx context.Context, id uuid.UUID) error
	AbandonStale(ctx context.Context, cutoff time.Time, reason string) ([]domain.Recording, error)
	ListIDsByStatus(ctx context.Context, status domain.RecordingStatus, limit int) ([]uuid.UUID, error)
}

type reviewRepo interface {
	Create(ctx context.Context, item *domain.ReviewItem) error
}

type catlogRepo interface {
	Create(ctx context.Context, log *domain.CategorizationLog) error
}

type auditLog interface {
	Append(ctx context.Context, ev domain.AuditEvent) (*domain.AuditEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type audioStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*transcribe.Result, error)
}

type analyzer interface {
	AnalyzeWithProgress(ctx context.Context, transcript string, onPhase func(domain.Phase)) (*analysis.Result, error)
}

type alarm interface {
	Raise(ctx context.Context, err error, tags map[string]string)
}
