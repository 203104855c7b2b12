package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenesisHash is the previous-hash value of the first chain entry.
var GenesisHash = strings.Repeat("0", 64)

// AuditEventType is the closed set of events recorded in the hash chain.
type AuditEventType string

const (
	AuditRecordingCreate AuditEventType = "recording.create"
	AuditRecordingUpdate AuditEventType = "recording.update"
	AuditRecordingFail   AuditEventType = "recording.fail"
	AuditReviewCreate    AuditEventType = "review.create"
	AuditReviewAccess    AuditEventType = "review.access"
	AuditReviewUpdate    AuditEventType = "review.update"
	AuditReviewConfirm   AuditEventType = "review.confirm"
	AuditReviewDiscard   AuditEventType = "review.discard"
	AuditClinicalCreate  AuditEventType = "clinical.create"
)

func (e AuditEventType) String() string { return string(e) }

func (e AuditEventType) IsValid() bool {
	switch e {
	case AuditRecordingCreate, AuditRecordingUpdate, AuditRecordingFail,
		AuditReviewCreate, AuditReviewAccess, AuditReviewUpdate,
		AuditReviewConfirm, AuditReviewDiscard, AuditClinicalCreate:
		return true
	}
	return false
}

// ResourceType names the kind of resource an audit entry refers to.
type ResourceType string

const (
	ResourceRecording ResourceType = "recording"
	ResourceReview    ResourceType = "review_item"
	ResourceClinical  ResourceType = "clinical_record"
)

// AuditEvent is what callers hand to the chain. The chain assigns ID and
// CreatedAt when they are zero.
type AuditEvent struct {
	ID           uuid.UUID
	Type         AuditEventType
	ActorID      *uuid.UUID
	ResourceType ResourceType
	ResourceID   uuid.UUID
	Before       json.RawMessage
	After        json.RawMessage
	CreatedAt    time.Time
}

// AuditEntry is a persisted, chained audit record.
type AuditEntry struct {
	Seq int64
	AuditEvent
	PrevHash   string
	RecordHash string
}

// VerifyResult is the outcome of recomputing a range of the chain.
type VerifyResult struct {
	Valid    bool
	Checked  int
	BrokenAt *int64
	Reason   string
}
