package domain

import (
	"time"

	"github.com/google/uuid"
)

// Recording is a captured audio artifact awaiting or having undergone
// processing. It is never deleted by this service.
type Recording struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	PatientID           *uuid.UUID
	ContextKind         ContextKind
	AudioRef            string
	DurationSeconds     float64
	CapturedAt          time.Time
	Status              RecordingStatus
	ProcessingStartedAt *time.Time
	ProcessingError     *string
	ChunkCount          *int
	StreamSessionID     *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsStreamed reports whether the recording was assembled from streamed chunks.
func (r *Recording) IsStreamed() bool {
	return r.StreamSessionID != nil
}
