package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// The state types below fix what each resource contributes to an entry's
// before/after payloads. Transcripts and category data stay out of the chain;
// entries reference them by id.

// RecordingState is the audited view of a recording.
type RecordingState struct {
	Status          domain.RecordingStatus `json:"status"`
	AudioRef        string                 `json:"audio_ref"`
	ContextKind     domain.ContextKind     `json:"context_kind"`
	PatientID       *uuid.UUID             `json:"patient_id,omitempty"`
	ProcessingError *string                `json:"processing_error,omitempty"`
}

// RecordingSnapshot returns rec's audited state.
func RecordingSnapshot(rec *domain.Recording) json.RawMessage {
	return Snapshot(RecordingState{
		Status:          rec.Status,
		AudioRef:        rec.AudioRef,
		ContextKind:     rec.ContextKind,
		PatientID:       rec.PatientID,
		ProcessingError: rec.ProcessingError,
	})
}

// ReviewState is the audited view of a review item.
type ReviewState struct {
	RecordingID       uuid.UUID             `json:"recording_id"`
	Status            domain.ReviewStatus   `json:"status"`
	OverallConfidence float64               `json:"overall_confidence"`
	Categories        []domain.CategoryType `json:"categories"`
	ReviewedAt        *time.Time            `json:"reviewed_at,omitempty"`
}

// ReviewSnapshot returns item's audited state.
func ReviewSnapshot(item *domain.ReviewItem) json.RawMessage {
	var reviewedAt *time.Time
	if item.ReviewedAt != nil {
		t := item.ReviewedAt.UTC()
		reviewedAt = &t
	}
	return Snapshot(ReviewState{
		RecordingID:       item.RecordingID,
		Status:            item.Status,
		OverallConfidence: item.OverallConfidence,
		Categories:        item.Extracted.Types(),
		ReviewedAt:        reviewedAt,
	})
}

// ClinicalState is the audited view of a confirmed clinical record.
type ClinicalState struct {
	Category     domain.CategoryType `json:"category"`
	ReviewItemID uuid.UUID           `json:"review_item_id"`
	RecordingID  uuid.UUID           `json:"recording_id"`
	PatientID    *uuid.UUID          `json:"patient_id,omitempty"`
	Confidence   float64             `json:"confidence"`
}

// ClinicalSnapshot returns rec's audited state.
func ClinicalSnapshot(rec domain.ClinicalRecord) json.RawMessage {
	return Snapshot(ClinicalState{
		Category:     rec.Type(),
		ReviewItemID: rec.ReviewItemID,
		RecordingID:  rec.RecordingID,
		PatientID:    rec.PatientID,
		Confidence:   rec.Confidence,
	})
}
