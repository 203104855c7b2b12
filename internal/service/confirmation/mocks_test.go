package confirmation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

var _ reviewRepo = &reviewRepoMock{}

type reviewRepoMock struct {
	GetForUserFunc func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.ReviewItem, error)
	FinalizeFunc   func(ctx context.Context, userID uuid.UUID, id uuid.UUID, status domain.ReviewStatus, at time.Time, extracted *domain.ExtractedData) (*domain.ReviewItem, error)

	calls struct {
		GetForUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
		Finalize []struct {
			Ctx       context.Context
			UserID    uuid.UUID
			ID        uuid.UUID
			Status    domain.ReviewStatus
			At        time.Time
			Extracted *domain.ExtractedData
		}
	}
	lockGetForUser sync.RWMutex
	lockFinalize   sync.RWMutex
}

func (mock *reviewRepoMock) GetForUser(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.ReviewItem, error) {
	if mock.GetForUserFunc == nil {
		panic("reviewRepoMock.GetForUserFunc: method is nil but reviewRepo.GetForUser was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
	}{Ctx: ctx, UserID: userID, ID: id}
	mock.lockGetForUser.Lock()
	mock.calls.GetForUser = append(mock.calls.GetForUser, callInfo)
	mock.lockGetForUser.Unlock()
	return mock.GetForUserFunc(ctx, userID, id)
}

func (mock *reviewRepoMock) GetForUserCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	ID     uuid.UUID
} {
	mock.lockGetForUser.RLock()
	calls := mock.calls.GetForUser
	mock.lockGetForUser.RUnlock()
	return calls
}

func (mock *reviewRepoMock) Finalize(ctx context.Context, userID uuid.UUID, id uuid.UUID, status domain.ReviewStatus, at time.Time, extracted *domain.ExtractedData) (*domain.ReviewItem, error) {
	if mock.FinalizeFunc == nil {
		panic("reviewRepoMock.FinalizeFunc: method is nil but reviewRepo.Finalize was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		UserID    uuid.UUID
		ID        uuid.UUID
		Status    domain.ReviewStatus
		At        time.Time
		Extracted *domain.ExtractedData
	}{Ctx: ctx, UserID: userID, ID: id, Status: status, At: at, Extracted: extracted}
	mock.lockFinalize.Lock()
	mock.calls.Finalize = append(mock.calls.Finalize, callInfo)
	mock.lockFinalize.Unlock()
	return mock.FinalizeFunc(ctx, userID, id, status, at, extracted)
}

func (mock *reviewRepoMock) FinalizeCalls() []struct {
	Ctx       context.Context
	UserID    uuid.UUID
	ID        uuid.UUID
	Status    domain.ReviewStatus
	At        time.Time
	Extracted *domain.ExtractedData
} {
	mock.lockFinalize.RLock()
	calls := mock.calls.Finalize
	mock.lockFinalize.RUnlock()
	return calls
}

var _ clinicalRepo = &clinicalRepoMock{}

type clinicalRepoMock struct {
	InsertFunc func(ctx context.Context, rec domain.ClinicalRecord) error

	calls struct {
		Insert []struct {
			Ctx context.Context
			Rec domain.ClinicalRecord
		}
	}
	lockInsert sync.RWMutex
}

func (mock *clinicalRepoMock) Insert(ctx context.Context, rec domain.ClinicalRecord) error {
	if mock.InsertFunc == nil {
		panic("clinicalRepoMock.InsertFunc: method is nil but clinicalRepo.Insert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Rec domain.ClinicalRecord
	}{Ctx: ctx, Rec: rec}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, callInfo)
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, rec)
}

func (mock *clinicalRepoMock) InsertCalls() []struct {
	Ctx context.Context
	Rec domain.ClinicalRecord
} {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

var _ catlogRepo = &catlogRepoMock{}

type catlogRepoMock struct {
	SetConfirmedFunc func(ctx context.Context, reviewItemID uuid.UUID, confirmedBy uuid.UUID, at time.Time) error

	calls struct {
		SetConfirmed []struct {
			Ctx          context.Context
			ReviewItemID uuid.UUID
			ConfirmedBy  uuid.UUID
			At           time.Time
		}
	}
	lockSetConfirmed sync.RWMutex
}

func (mock *catlogRepoMock) SetConfirmed(ctx context.Context, reviewItemID uuid.UUID, confirmedBy uuid.UUID, at time.Time) error {
	if mock.SetConfirmedFunc == nil {
		panic("catlogRepoMock.SetConfirmedFunc: method is nil but catlogRepo.SetConfirmed was just called")
	}
	callInfo := struct {
		Ctx          context.Context
		ReviewItemID uuid.UUID
		ConfirmedBy  uuid.UUID
		At           time.Time
	}{Ctx: ctx, ReviewItemID: reviewItemID, ConfirmedBy: confirmedBy, At: at}
	mock.lockSetConfirmed.Lock()
	mock.calls.SetConfirmed = append(mock.calls.SetConfirmed, callInfo)
	mock.lockSetConfirmed.Unlock()
	return mock.SetConfirmedFunc(ctx, reviewItemID, confirmedBy, at)
}

func (mock *catlogRepoMock) SetConfirmedCalls() []struct {
	Ctx          context.Context
	ReviewItemID uuid.UUID
	ConfirmedBy  uuid.UUID
	At           time.Time
} {
	mock.lockSetConfirmed.RLock()
	calls := mock.calls.SetConfirmed
	mock.lockSetConfirmed.RUnlock()
	return calls
}

var _ auditLog = &auditLogMock{}

type auditLogMock struct {
	AppendFunc func(ctx context.Context, ev domain.AuditEvent) (*domain.AuditEntry, error)

	calls struct {
		Append []struct {
			Ctx context.Context
			Ev  domain.AuditEvent
		}
	}
	lockAppend sync.RWMutex
}

func (mock *auditLogMock) Append(ctx context.Context, ev domain.AuditEvent) (*domain.AuditEntry, error) {
	if mock.AppendFunc == nil {
		panic("auditLogMock.AppendFunc: method is nil but auditLog.Append was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ev  domain.AuditEvent
	}{Ctx: ctx, Ev: ev}
	mock.lockAppend.Lock()
	mock.calls.Append = append(mock.calls.Append, callInfo)
	mock.lockAppend.Unlock()
	return mock.AppendFunc(ctx, ev)
}

func (mock *auditLogMock) AppendCalls() []struct {
	Ctx context.Context
	Ev  domain.AuditEvent
} {
	mock.lockAppend.RLock()
	calls := mock.calls.Append
	mock.lockAppend.RUnlock()
	return calls
}
