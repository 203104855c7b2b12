package intake

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

var _ audioStore = &audioStoreMock{}

type audioStoreMock struct {
	PutFunc    func(ctx context.Context, key string, r io.Reader, size int64) error
	DeleteFunc func(ctx context.Context, key string) error

	calls struct {
		Put []struct {
			Ctx  context.Context
			Key  string
			R    io.Reader
			Size int64
		}
		Delete []struct {
			Ctx context.Context
			Key string
		}
	}
	lockPut    sync.RWMutex
	lockDelete sync.RWMutex
}

func (mock *audioStoreMock) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if mock.PutFunc == nil {
		panic("audioStoreMock.PutFunc: method is nil but audioStore.Put was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Key  string
		R    io.Reader
		Size int64
	}{Ctx: ctx, Key: key, R: r, Size: size}
	mock.lockPut.Lock()
	mock.calls.Put = append(mock.calls.Put, callInfo)
	mock.lockPut.Unlock()
	return mock.PutFunc(ctx, key, r, size)
}

func (mock *audioStoreMock) PutCalls() []struct {
	Ctx  context.Context
	Key  string
	R    io.Reader
	Size int64
} {
	mock.lockPut.RLock()
	calls := mock.calls.Put
	mock.lockPut.RUnlock()
	return calls
}

func (mock *audioStoreMock) Delete(ctx context.Context, key string) error {
	if mock.DeleteFunc == nil {
		panic("audioStoreMock.DeleteFunc: method is nil but audioStore.Delete was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, key)
}

func (mock *audioStoreMock) DeleteCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

var _ recordingRepo = &recordingRepoMock{}

type recordingRepoMock struct {
	CreateFunc     func(ctx context.Context, rec *domain.Recording) error
	GetForUserFunc func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Recording, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			Rec *domain.Recording
		}
		GetForUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
	}
	lockCreate     sync.RWMutex
	lockGetForUser sync.RWMutex
}

func (mock *recordingRepoMock) Create(ctx context.Context, rec *domain.Recording) error {
	if mock.CreateFunc == nil {
		panic("recordingRepoMock.CreateFunc: method is nil but recordingRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Rec *domain.Recording
	}{Ctx: ctx, Rec: rec}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, rec)
}

func (mock *recordingRepoMock) CreateCalls() []struct {
	Ctx context.Context
	Rec *domain.Recording
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *recordingRepoMock) GetForUser(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Recording, error) {
	if mock.GetForUserFunc == nil {
		panic("recordingRepoMock.GetForUserFunc: method is nil but recordingRepo.GetForUser was just called")
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

func (mock *recordingRepoMock) GetForUserCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	ID     uuid.UUID
} {
	mock.lockGetForUser.RLock()
	calls := mock.calls.GetForUser
	mock.lockGetForUser.RUnlock()
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

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct {
			Ctx context.Context
			Fn  func(ctx context.Context) error
		}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Fn  func(ctx context.Context) error
	}{Ctx: ctx, Fn: fn}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, callInfo)
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct {
	Ctx context.Context
	Fn  func(ctx context.Context) error
} {
	mock.lockRunInTx.RLock()
	calls := mock.calls.RunInTx
	mock.lockRunInTx.RUnlock()
	return calls
}

var _ scheduler = &schedulerMock{}

type schedulerMock struct {
	EnqueueFunc func(ctx context.Context, recordingID uuid.UUID) error

	calls struct {
		Enqueue []struct {
			Ctx         context.Context
			RecordingID uuid.UUID
		}
	}
	lockEnqueue sync.RWMutex
}

func (mock *schedulerMock) Enqueue(ctx context.Context, recordingID uuid.UUID) error {
	if mock.EnqueueFunc == nil {
		panic("schedulerMock.EnqueueFunc: method is nil but scheduler.Enqueue was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		RecordingID uuid.UUID
	}{Ctx: ctx, RecordingID: recordingID}
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, callInfo)
	mock.lockEnqueue.Unlock()
	return mock.EnqueueFunc(ctx, recordingID)
}

func (mock *schedulerMock) EnqueueCalls() []struct {
	Ctx         context.Context
	RecordingID uuid.UUID
} {
	mock.lockEnqueue.RLock()
	calls := mock.calls.Enqueue
	mock.lockEnqueue.RUnlock()
	return calls
}
