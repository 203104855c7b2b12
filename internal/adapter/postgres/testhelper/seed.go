package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// SeedRecording inserts a global-context recording in the given status.
func SeedRecording(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, status domain.RecordingStatus) domain.Recording {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := domain.Recording{
		ID:              uuid.New(),
		UserID:          userID,
		ContextKind:     domain.ContextKindGlobal,
		AudioRef:        "recordings/" + uuid.NewString() + ".wav",
		DurationSeconds: 12.5,
		CapturedAt:      now,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == domain.RecordingStatusProcessing {
		rec.ProcessingStartedAt = &now
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO recordings (id, user_id, context_kind, audio_ref, duration_seconds, captured_at,
		                         status, processing_started_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.UserID, string(rec.ContextKind), rec.AudioRef, rec.DurationSeconds, rec.CapturedAt,
		string(rec.Status), rec.ProcessingStartedAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRecording: %v", err)
	}
	return rec
}

// SeedReviewItem inserts a completed recording and a pending review item
// with one vitals category, plus its categorization log.
func SeedReviewItem(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) domain.ReviewItem {
	t.Helper()
	ctx := context.Background()

	rec := SeedRecording(t, pool, userID, domain.RecordingStatusCompleted)

	sys, dia := 132.0, 84.0
	extracted := domain.ExtractedData{
		Categories: []domain.CategoryResult{{
			Type:       domain.CategoryVitals,
			Confidence: 0.9,
			Data:       &domain.Vitals{SystolicBP: &sys, DiastolicBP: &dia},
		}},
		OverallConfidence: 0.9,
	}
	raw, err := json.Marshal(extracted)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewItem marshal: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	item := domain.ReviewItem{
		ID:                uuid.New(),
		RecordingID:       rec.ID,
		UserID:            userID,
		ContextKind:       rec.ContextKind,
		Transcript:        "血圧132の84です",
		Language:          "ja",
		Extracted:         extracted,
		OverallConfidence: 0.9,
		Status:            domain.ReviewStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO review_items (id, recording_id, user_id, context_kind, transcript, language,
		                           extracted, overall_confidence, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.RecordingID, item.UserID, string(item.ContextKind), item.Transcript, item.Language,
		raw, item.OverallConfidence, string(item.Status), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewItem insert review: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO categorization_logs (id, review_item_id, detections, created_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), item.ID, []byte(`[{"type":"vitals","confidence":0.9}]`), now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewItem insert log: %v", err)
	}

	return item
}
