package intake

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// MaxDurationSeconds bounds a single recording.
const MaxDurationSeconds = 4 * 60 * 60

// SubmitInput is one uploaded recording.
type SubmitInput struct {
	Audio           io.Reader
	Filename        string
	Size            int64
	PatientID       *uuid.UUID
	ContextKind     domain.ContextKind
	DurationSeconds float64
	CapturedAt      *time.Time
	ChunkCount      *int
	StreamSessionID *string
}

// Validate checks all fields and collects all errors.
func (i *SubmitInput) Validate() error {
	var errs []domain.FieldError

	if i.Audio == nil || i.Size <= 0 {
		errs = append(errs, domain.FieldError{Field: "audio", Message: "required"})
	}
	if !i.ContextKind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "context_kind", Message: "must be patient or global"})
	}
	if i.ContextKind == domain.ContextKindPatient && i.PatientID == nil {
		errs = append(errs, domain.FieldError{Field: "patient_id", Message: "required for patient context"})
	}
	if i.ContextKind == domain.ContextKindGlobal && i.PatientID != nil {
		errs = append(errs, domain.FieldError{Field: "patient_id", Message: "must be empty for global context"})
	}
	if i.DurationSeconds <= 0 || i.DurationSeconds > MaxDurationSeconds {
		errs = append(errs, domain.FieldError{Field: "duration", Message: "must be between 0 and 4 hours"})
	}
	if i.ChunkCount != nil && *i.ChunkCount <= 0 {
		errs = append(errs, domain.FieldError{Field: "chunk_count", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
