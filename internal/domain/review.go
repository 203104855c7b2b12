package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the confirmation state of a review item.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusInReview  ReviewStatus = "in_review"
	ReviewStatusConfirmed ReviewStatus = "confirmed"
	ReviewStatusDiscarded ReviewStatus = "discarded"
)

// reviewTransitions is the complete transition table. Anything not listed
// here is rejected.
var reviewTransitions = map[ReviewStatus][]ReviewStatus{
	ReviewStatusPending:   {ReviewStatusInReview, ReviewStatusConfirmed, ReviewStatusDiscarded},
	ReviewStatusInReview:  {ReviewStatusInReview, ReviewStatusConfirmed, ReviewStatusDiscarded},
	ReviewStatusConfirmed: nil,
	ReviewStatusDiscarded: nil,
}

func (s ReviewStatus) String() string { return string(s) }

func (s ReviewStatus) IsValid() bool {
	_, ok := reviewTransitions[s]
	return ok
}

// IsTerminal reports whether no further mutation is permitted.
func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewStatusConfirmed || s == ReviewStatusDiscarded
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s ReviewStatus) CanTransitionTo(next ReviewStatus) bool {
	for _, allowed := range reviewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrTerminalState for moves out of a terminal status
// and ErrInvalidTransition for any other move missing from the table.
func (s ReviewStatus) CheckTransition(next ReviewStatus) error {
	if s.IsTerminal() {
		return fmt.Errorf("%s -> %s: %w", s, next, ErrTerminalState)
	}
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", s, next, ErrInvalidTransition)
	}
	return nil
}

// NonTerminalReviewStatuses lists the statuses a terminal transition may
// start from. Repositories use it as the compare-and-set guard.
func NonTerminalReviewStatuses() []ReviewStatus {
	return []ReviewStatus{ReviewStatusPending, ReviewStatusInReview}
}

// ReviewItem is the processed-but-unconfirmed result of one recording.
type ReviewItem struct {
	ID                uuid.UUID
	RecordingID       uuid.UUID
	UserID            uuid.UUID
	ContextKind       ContextKind
	PatientID         *uuid.UUID
	Transcript        string
	Language          string
	Extracted         ExtractedData
	OverallConfidence float64
	Status            ReviewStatus
	CreatedAt         time.Time
	ReviewedAt        *time.Time
	UpdatedAt         time.Time

	// IsUrgent is computed by the queue manager, never stored.
	IsUrgent bool
}

// CategorizationLog is the per-review record of what the pipeline detected
// and how the item was finally settled.
type CategorizationLog struct {
	ID              uuid.UUID
	ReviewItemID    uuid.UUID
	Detections      []Detection
	Prompts         map[string]string
	ReanalysisCount int
	ConfirmedBy     *uuid.UUID
	ConfirmedAt     *time.Time
	CreatedAt       time.Time
}
