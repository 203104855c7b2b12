package domain

// ContextKind tells whether a recording documents a specific patient or
// general ward activity.
type ContextKind string

const (
	ContextKindPatient ContextKind = "patient"
	ContextKindGlobal  ContextKind = "global"
)

func (k ContextKind) String() string { return string(k) }

func (k ContextKind) IsValid() bool {
	switch k {
	case ContextKindPatient, ContextKindGlobal:
		return true
	}
	return false
}

// RecordingStatus represents the processing state of a recording.
type RecordingStatus string

const (
	RecordingStatusPending    RecordingStatus = "pending"
	RecordingStatusProcessing RecordingStatus = "processing"
	RecordingStatusCompleted  RecordingStatus = "completed"
	RecordingStatusFailed     RecordingStatus = "failed"
)

func (s RecordingStatus) String() string { return string(s) }

func (s RecordingStatus) IsValid() bool {
	switch s {
	case RecordingStatusPending, RecordingStatusProcessing, RecordingStatusCompleted, RecordingStatusFailed:
		return true
	}
	return false
}

// Phase is a pipeline progress marker pushed to the owning user's client.
type Phase string

const (
	PhaseTranscribing    Phase = "transcribing"
	PhaseCategorizing    Phase = "categorizing"
	PhaseExtracting      Phase = "extracting"
	PhaseQueuedForReview Phase = "queued-for-review"
	PhaseFailed          Phase = "failed"
)

func (p Phase) String() string { return string(p) }

// AggregationStrategy selects how the overall confidence is computed.
type AggregationStrategy string

const (
	AggregationMean     AggregationStrategy = "mean"
	AggregationWeighted AggregationStrategy = "weighted"
)

func (a AggregationStrategy) IsValid() bool {
	switch a {
	case AggregationMean, AggregationWeighted:
		return true
	}
	return false
}
