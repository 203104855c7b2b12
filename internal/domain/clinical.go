package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalRecord is one confirmed category written to its domain table.
// Provenance links it back to the review item and recording it came from.
type ClinicalRecord struct {
	ID           uuid.UUID
	ReviewItemID uuid.UUID
	RecordingID  uuid.UUID
	PatientID    *uuid.UUID
	RecordedBy   uuid.UUID
	RecordedAt   time.Time
	Confidence   float64
	Data         CategoryData
}

// Type returns the category of the wrapped data.
func (r ClinicalRecord) Type() CategoryType {
	if r.Data == nil {
		return ""
	}
	return r.Data.Type()
}
