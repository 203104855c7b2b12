// Package reviewitem implements the ReviewItem repository using PostgreSQL.
// Every mutation is guarded by status IN ('pending','in_review'), so a
// terminal status is written at most once no matter how many callers race.
package reviewitem

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

const table = "review_items"

var columns = []string{
	"id", "recording_id", "user_id", "context_kind", "patient_id", "transcript",
	"language", "extracted", "overall_confidence", "status", "created_at",
	"reviewed_at", "updated_at",
}

// Repo provides review item persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new review item repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO review_items (id, recording_id, user_id, context_kind, patient_id, transcript,
                          language, extracted, overall_confidence, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`

const openSQL = `
UPDATE review_items
SET status = 'in_review', updated_at = now()
WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'in_review')
RETURNING ` + returning

const updateAnalysisSQL = `
UPDATE review_items
SET transcript = $3, extracted = $4, overall_confidence = $5, status = 'in_review', updated_at = now()
WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'in_review')
RETURNING ` + returning

const finalizeSQL = `
UPDATE review_items
SET status = $3, reviewed_at = $4, extracted = COALESCE($5, extracted), updated_at = $4
WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'in_review')
RETURNING ` + returning

const statusSQL = `SELECT status FROM review_items WHERE id = $1 AND user_id = $2`

const returning = `id, recording_id, user_id, context_kind, patient_id, transcript, language,
          extracted, overall_confidence, status, created_at, reviewed_at, updated_at`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new review item.
func (r *Repo) Create(ctx context.Context, item *domain.ReviewItem) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	extracted, err := json.Marshal(item.Extracted)
	if err != nil {
		return fmt.Errorf("review_item %s marshal extracted: %w", item.ID, err)
	}

	_, err = q.Exec(ctx, insertSQL,
		item.ID, item.RecordingID, item.UserID, string(item.ContextKind), item.PatientID, item.Transcript,
		item.Language, extracted, item.OverallConfidence, string(item.Status), item.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "review_item", item.ID)
	}
	return nil
}

// Open moves the item to in_review. Re-opening an in_review item succeeds.
func (r *Repo) Open(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewItem, error) {
	return r.casUpdate(ctx, userID, id, openSQL, id, userID)
}

// UpdateAnalysis replaces the transcript and extraction of a non-terminal
// item and leaves it in_review.
func (r *Repo) UpdateAnalysis(ctx context.Context, userID, id uuid.UUID, transcript string, extracted domain.ExtractedData) (*domain.ReviewItem, error) {
	raw, err := json.Marshal(extracted)
	if err != nil {
		return nil, fmt.Errorf("review_item %s marshal extracted: %w", id, err)
	}
	return r.casUpdate(ctx, userID, id, updateAnalysisSQL,
		id, userID, transcript, raw, extracted.OverallConfidence)
}

// Finalize moves a non-terminal item to a terminal status. When extracted is
// non-nil it replaces the stored extraction with the reviewer's final data.
// Exactly one concurrent caller succeeds; the others get domain.ErrTerminalState.
func (r *Repo) Finalize(ctx context.Context, userID, id uuid.UUID, status domain.ReviewStatus, at time.Time, extracted *domain.ExtractedData) (*domain.ReviewItem, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("review_item %s finalize to %s: %w", id, status, domain.ErrInvalidTransition)
	}

	var raw []byte
	if extracted != nil {
		b, err := json.Marshal(extracted)
		if err != nil {
			return nil, fmt.Errorf("review_item %s marshal extracted: %w", id, err)
		}
		raw = b
	}
	return r.casUpdate(ctx, userID, id, finalizeSQL, id, userID, string(status), at, raw)
}

// casUpdate runs a guarded UPDATE ... RETURNING. A miss is resolved into
// ErrNotFound (absent or foreign row) or ErrTerminalState.
func (r *Repo) casUpdate(ctx context.Context, userID, id uuid.UUID, sql string, args ...any) (*domain.ReviewItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row reviewRow
	err := pgxscan.Get(ctx, q, &row, sql, args...)
	if err == nil {
		return row.toDomain()
	}
	if !pgxscan.NotFound(err) {
		return nil, postgres.MapError(err, "review_item", id)
	}

	var status string
	if err := q.QueryRow(ctx, statusSQL, id, userID).Scan(&status); err != nil {
		return nil, postgres.MapError(err, "review_item", id)
	}
	return nil, fmt.Errorf("review_item %s is %s: %w", id, status, domain.ErrTerminalState)
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetForUser returns an item owned by userID.
func (r *Repo) GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var row reviewRow
	if err := pgxscan.Get(ctx, q, &row, query, args...); err != nil {
		return nil, postgres.MapError(err, "review_item", id)
	}
	return row.toDomain()
}

// ListPending returns the user's non-terminal items, oldest first with id as
// the tie-break.
func (r *Repo) ListPending(ctx context.Context, userID uuid.UUID) ([]domain.ReviewItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	statuses := make([]string, 0, 2)
	for _, s := range domain.NonTerminalReviewStatuses() {
		statuses = append(statuses, string(s))
	}

	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID, "status": statuses}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []reviewRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending review_items: %w", err)
	}

	items := make([]domain.ReviewItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

type reviewRow struct {
	ID                uuid.UUID  `db:"id"`
	RecordingID       uuid.UUID  `db:"recording_id"`
	UserID            uuid.UUID  `db:"user_id"`
	ContextKind       string     `db:"context_kind"`
	PatientID         *uuid.UUID `db:"patient_id"`
	Transcript        string     `db:"transcript"`
	Language          string     `db:"language"`
	Extracted         []byte     `db:"extracted"`
	OverallConfidence float64    `db:"overall_confidence"`
	Status            string     `db:"status"`
	CreatedAt         time.Time  `db:"created_at"`
	ReviewedAt        *time.Time `db:"reviewed_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (row reviewRow) toDomain() (*domain.ReviewItem, error) {
	item := &domain.ReviewItem{
		ID:                row.ID,
		RecordingID:       row.RecordingID,
		UserID:            row.UserID,
		ContextKind:       domain.ContextKind(row.ContextKind),
		PatientID:         row.PatientID,
		Transcript:        row.Transcript,
		Language:          row.Language,
		OverallConfidence: row.OverallConfidence,
		Status:            domain.ReviewStatus(row.Status),
		CreatedAt:         row.CreatedAt,
		ReviewedAt:        row.ReviewedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if len(row.Extracted) > 0 {
		if err := json.Unmarshal(row.Extracted, &item.Extracted); err != nil {
			return nil, fmt.Errorf("review_item %s unmarshal extracted: %w", row.ID, err)
		}
	}
	return item, nil
}
