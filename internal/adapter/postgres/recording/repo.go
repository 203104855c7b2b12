// Package recording implements the Recording repository using PostgreSQL.
// Status changes are compare-and-set updates so that the scheduler, the
// workers and the staleness sweep never overwrite each other.
package recording

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

const table = "recordings"

var columns = []string{
	"id", "user_id", "patient_id", "context_kind", "audio_ref", "duration_seconds",
	"captured_at", "status", "processing_started_at", "processing_error",
	"chunk_count", "stream_session_id", "created_at", "updated_at",
}

// Repo provides recording persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new recording repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO recordings (id, user_id, patient_id, context_kind, audio_ref, duration_seconds,
                        captured_at, status, chunk_count, stream_session_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`

const claimSQL = `
UPDATE recordings
SET status = 'processing', processing_started_at = $2, processing_error = NULL, updated_at = $2
WHERE id = $1 AND status = 'pending'`

const completeSQL = `
UPDATE recordings
SET status = 'completed', updated_at = now()
WHERE id = $1 AND status = 'processing'`

const failSQL = `
UPDATE recordings
SET status = 'failed', processing_error = $2, updated_at = now()
WHERE id = $1 AND status IN ('pending', 'processing')`

const resetSQL = `
UPDATE recordings
SET status = 'pending', processing_started_at = NULL, processing_error = NULL, updated_at = now()
WHERE id = $1 AND status = 'failed'`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new recording. The status must be pending.
func (r *Repo) Create(ctx context.Context, rec *domain.Recording) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	_, err := q.Exec(ctx, insertSQL,
		rec.ID, rec.UserID, rec.PatientID, string(rec.ContextKind), rec.AudioRef, rec.DurationSeconds,
		rec.CapturedAt, string(rec.Status), rec.ChunkCount, rec.StreamSessionID, rec.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "recording", rec.ID)
	}
	return nil
}

// Claim moves a pending recording to processing. It returns false when the
// recording was not pending, meaning another worker (or the sweep) got there first.
func (r *Repo) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, claimSQL, id, now)
	if err != nil {
		return false, postgres.MapError(err, "recording", id)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCompleted moves a processing recording to completed.
// Returns domain.ErrInvalidTransition if it is no longer processing
// (for example because the sweep abandoned it).
func (r *Repo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, completeSQL, id)
	if err != nil {
		return postgres.MapError(err, "recording", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording %s: complete: %w", id, domain.ErrInvalidTransition)
	}
	return nil
}

// MarkFailed records a permanent failure. Completed and already failed
// recordings are left untouched and reported as domain.ErrInvalidTransition.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, failSQL, id, reason)
	if err != nil {
		return postgres.MapError(err, "recording", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording %s: fail: %w", id, domain.ErrInvalidTransition)
	}
	return nil
}

// ResetFailed moves a failed recording back to pending so an operator can
// requeue it.
func (r *Repo) ResetFailed(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, resetSQL, id)
	if err != nil {
		return postgres.MapError(err, "recording", id)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("recording %s: reset: %w", id, domain.ErrInvalidTransition)
	}
	return nil
}

// AbandonStale fails every recording that has been processing since before
// cutoff and returns the affected rows.
func (r *Repo) AbandonStale(ctx context.Context, cutoff time.Time, reason string) ([]domain.Recording, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := postgres.Builder().
		Update(table).
		Set("status", string(domain.RecordingStatusFailed)).
		Set("processing_error", reason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": string(domain.RecordingStatusProcessing)}).
		Where(squirrel.Lt{"processing_started_at": cutoff}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build abandon query: %w", err)
	}

	var rows []recordingRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("abandon stale recordings: %w", err)
	}
	return toDomainRecordings(rows), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a recording by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recording, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, id)
}

// GetForUser returns a recording owned by userID. Recordings of other users
// are reported as domain.ErrNotFound.
func (r *Repo) GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Recording, error) {
	return r.get(ctx, squirrel.Eq{"id": id, "user_id": userID}, id)
}

func (r *Repo) get(ctx context.Context, where squirrel.Eq, id uuid.UUID) (*domain.Recording, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := postgres.Builder().Select(columns...).From(table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var row recordingRow
	if err := pgxscan.Get(ctx, q, &row, query, args...); err != nil {
		return nil, postgres.MapError(err, "recording", id)
	}
	rec := row.toDomain()
	return &rec, nil
}

// ListIDsByStatus returns recording ids in the given status, oldest first.
// A non-positive limit means no limit.
func (r *Repo) ListIDsByStatus(ctx context.Context, status domain.RecordingStatus, limit int) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Select("id").
		From(table).
		Where(squirrel.Eq{"status": string(status)}).
		OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var ids []uuid.UUID
	if err := pgxscan.Select(ctx, q, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list %s recordings: %w", status, err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

type recordingRow struct {
	ID                  uuid.UUID  `db:"id"`
	UserID              uuid.UUID  `db:"user_id"`
	PatientID           *uuid.UUID `db:"patient_id"`
	ContextKind         string     `db:"context_kind"`
	AudioRef            string     `db:"audio_ref"`
	DurationSeconds     float64    `db:"duration_seconds"`
	CapturedAt          time.Time  `db:"captured_at"`
	Status              string     `db:"status"`
	ProcessingStartedAt *time.Time `db:"processing_started_at"`
	ProcessingError     *string    `db:"processing_error"`
	ChunkCount          *int       `db:"chunk_count"`
	StreamSessionID     *string    `db:"stream_session_id"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

func (row recordingRow) toDomain() domain.Recording {
	return domain.Recording{
		ID:                  row.ID,
		UserID:              row.UserID,
		PatientID:           row.PatientID,
		ContextKind:         domain.ContextKind(row.ContextKind),
		AudioRef:            row.AudioRef,
		DurationSeconds:     row.DurationSeconds,
		CapturedAt:          row.CapturedAt,
		Status:              domain.RecordingStatus(row.Status),
		ProcessingStartedAt: row.ProcessingStartedAt,
		ProcessingError:     row.ProcessingError,
		ChunkCount:          row.ChunkCount,
		StreamSessionID:     row.StreamSessionID,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func toDomainRecordings(rows []recordingRow) []domain.Recording {
	out := make([]domain.Recording, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}

func columnList() string {
	return strings.Join(columns, ", ")
}
