// Package catlog stores one categorization log per review item. Rows are
// inserted once; afterwards only the reanalysis counter and the confirmer
// change.
package catlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// Repo provides categorization log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new categorization log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const insertSQL = `
INSERT INTO categorization_logs (id, review_item_id, detections, prompts, reanalysis_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const getSQL = `
SELECT id, review_item_id, detections, prompts, reanalysis_count, confirmed_by, confirmed_at, created_at
FROM categorization_logs
WHERE review_item_id = $1`

const incrementSQL = `
UPDATE categorization_logs SET reanalysis_count = reanalysis_count + 1
WHERE review_item_id = $1
RETURNING reanalysis_count`

const confirmSQL = `
UPDATE categorization_logs SET confirmed_by = $2, confirmed_at = $3
WHERE review_item_id = $1 AND confirmed_by IS NULL`

// Create inserts a new log.
func (r *Repo) Create(ctx context.Context, log *domain.CategorizationLog) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	detections, err := json.Marshal(log.Detections)
	if err != nil {
		return fmt.Errorf("categorization_log %s marshal detections: %w", log.ID, err)
	}
	var prompts []byte
	if len(log.Prompts) > 0 {
		if prompts, err = json.Marshal(log.Prompts); err != nil {
			return fmt.Errorf("categorization_log %s marshal prompts: %w", log.ID, err)
		}
	}

	if _, err := q.Exec(ctx, insertSQL,
		log.ID, log.ReviewItemID, detections, prompts, log.ReanalysisCount, log.CreatedAt,
	); err != nil {
		return postgres.MapError(err, "categorization_log", log.ID)
	}
	return nil
}

// GetByReviewItem returns the log of a review item.
func (r *Repo) GetByReviewItem(ctx context.Context, reviewItemID uuid.UUID) (*domain.CategorizationLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row logRow
	if err := pgxscan.Get(ctx, q, &row, getSQL, reviewItemID); err != nil {
		return nil, postgres.MapError(err, "categorization_log for review_item", reviewItemID)
	}
	return row.toDomain()
}

// IncrementReanalysis bumps the reanalysis counter and returns its new value.
func (r *Repo) IncrementReanalysis(ctx context.Context, reviewItemID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, incrementSQL, reviewItemID).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "categorization_log for review_item", reviewItemID)
	}
	return count, nil
}

// SetConfirmed records who confirmed the review item. A log that already has
// a confirmer is reported as domain.ErrConflict.
func (r *Repo) SetConfirmed(ctx context.Context, reviewItemID, confirmedBy uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, confirmSQL, reviewItemID, confirmedBy, at)
	if err != nil {
		return postgres.MapError(err, "categorization_log for review_item", reviewItemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categorization_log for review_item %s: %w", reviewItemID, domain.ErrConflict)
	}
	return nil
}

type logRow struct {
	ID              uuid.UUID  `db:"id"`
	ReviewItemID    uuid.UUID  `db:"review_item_id"`
	Detections      []byte     `db:"detections"`
	Prompts         []byte     `db:"prompts"`
	ReanalysisCount int        `db:"reanalysis_count"`
	ConfirmedBy     *uuid.UUID `db:"confirmed_by"`
	ConfirmedAt     *time.Time `db:"confirmed_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (row logRow) toDomain() (*domain.CategorizationLog, error) {
	log := &domain.CategorizationLog{
		ID:              row.ID,
		ReviewItemID:    row.ReviewItemID,
		ReanalysisCount: row.ReanalysisCount,
		ConfirmedBy:     row.ConfirmedBy,
		ConfirmedAt:     row.ConfirmedAt,
		CreatedAt:       row.CreatedAt,
	}
	if err := json.Unmarshal(row.Detections, &log.Detections); err != nil {
		return nil, fmt.Errorf("categorization_log %s unmarshal detections: %w", row.ID, err)
	}
	if len(row.Prompts) > 0 {
		if err := json.Unmarshal(row.Prompts, &log.Prompts); err != nil {
			return nil, fmt.Errorf("categorization_log %s unmarshal prompts: %w", row.ID, err)
		}
	}
	return log, nil
}
