package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/transcribe"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/analysis"
)

var _ recordingRepo = &recordingRepoMock{}

type recordingRepoMock struct {
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.Recording, error)
	ClaimFunc           func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	MarkCompletedFunc   func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc      func(ctx context.Context, id uuid.UUID, reason string) error
	ResetFailedFunc     func(ctx context.Context, id uuid.UUID) error
	AbandonStaleFunc    func(ctx context.Context, cutoff time.Time, reason string) ([]domain.Recording, error)
	ListIDsByStatusFunc func(ctx context.Context, status domain.RecordingStatus, limit int) ([]uuid.UUID, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Claim []struct {
			Ctx context.Context
			ID  uuid.UUID
			Now time.Time
		}
		MarkCompleted []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		MarkFailed []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Reason string
		}
		ResetFailed []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		AbandonStale []struct {
			Ctx    context.Context
			Cutoff time.Time
			Reason string
		}
		ListIDsByStatus []struct {
			Ctx    context.Context
			Status domain.RecordingStatus
			Limit  int
		}
	}
	lockGetByID         sync.RWMutex
	lockClaim           sync.RWMutex
	lockMarkCompleted   sync.RWMutex
	lockMarkFailed      sync.RWMutex
	lockResetFailed     sync.RWMutex
	lockAbandonStale    sync.RWMutex
	lockListIDsByStatus sync.RWMutex
}

func (mock *recordingRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recording, error) {
	if mock.GetByIDFunc == nil {
		panic("recordingRepoMock.GetByIDFunc: method is nil but recordingRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *recordingRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *recordingRepoMock) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	if mock.ClaimFunc == nil {
		panic("recordingRepoMock.ClaimFunc: method is nil but recordingRepo.Claim was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
		Now time.Time
	}{Ctx: ctx, ID: id, Now: now}
	mock.lockClaim.Lock()
	mock.calls.Claim = append(mock.calls.Claim, callInfo)
	mock.lockClaim.Unlock()
	return mock.ClaimFunc(ctx, id, now)
}

func (mock *recordingRepoMock) ClaimCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
	Now time.Time
} {
	mock.lockClaim.RLock()
	calls := mock.calls.Claim
	mock.lockClaim.RUnlock()
	return calls
}

func (mock *recordingRepoMock) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	if mock.MarkCompletedFunc == nil {
		panic("recordingRepoMock.MarkCompletedFunc: method is nil but recordingRepo.MarkCompleted was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockMarkCompleted.Lock()
	mock.calls.MarkCompleted = append(mock.calls.MarkCompleted, callInfo)
	mock.lockMarkCompleted.Unlock()
	return mock.MarkCompletedFunc(ctx, id)
}

func (mock *recordingRepoMock) MarkCompletedCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockMarkCompleted.RLock()
	calls := mock.calls.MarkCompleted
	mock.lockMarkCompleted.RUnlock()
	return calls
}

func (mock *recordingRepoMock) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if mock.MarkFailedFunc == nil {
		panic("recordingRepoMock.MarkFailedFunc: method is nil but recordingRepo.MarkFailed was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Reason string
	}{Ctx: ctx, ID: id, Reason: reason}
	mock.lockMarkFailed.Lock()
	mock.calls.MarkFailed = append(mock.calls.MarkFailed, callInfo)
	mock.lockMarkFailed.Unlock()
	return mock.MarkFailedFunc(ctx, id, reason)
}

func (mock *recordingRepoMock) MarkFailedCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Reason string
} {
	mock.lockMarkFailed.RLock()
	calls := mock.calls.MarkFailed
	mock.lockMarkFailed.RUnlock()
	return calls
}

func (mock *recordingRepoMock) ResetFailed(ctx context.Context, id uuid.UUID) error {
	if mock.ResetFailedFunc == nil {
		panic("recordingRepoMock.ResetFailedFunc: method is nil but recordingRepo.ResetFailed was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockResetFailed.Lock()
	mock.calls.ResetFailed = append(mock.calls.ResetFailed, callInfo)
	mock.lockResetFailed.Unlock()
	return mock.ResetFailedFunc(ctx, id)
}

func (mock *recordingRepoMock) ResetFailedCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockResetFailed.RLock()
	calls := mock.calls.ResetFailed
	mock.lockResetFailed.RUnlock()
	return calls
}

func (mock *recordingRepoMock) AbandonStale(ctx context.Context, cutoff time.Time, reason string) ([]domain.Recording, error) {
	if mock.AbandonStaleFunc == nil {
		panic("recordingRepoMock.AbandonStaleFunc: method is nil but recordingRepo.AbandonStale was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Cutoff time.Time
		Reason string
	}{Ctx: ctx, Cutoff: cutoff, Reason: reason}
	mock.lockAbandonStale.Lock()
	mock.calls.AbandonStale = append(mock.calls.AbandonStale, callInfo)
	mock.lockAbandonStale.Unlock()
	return mock.AbandonStaleFunc(ctx, cutoff, reason)
}

func (mock *recordingRepoMock) AbandonStaleCalls() []struct {
	Ctx    context.Context
	Cutoff time.Time
	Reason string
} {
	mock.lockAbandonStale.RLock()
	calls := mock.calls.AbandonStale
	mock.lockAbandonStale.RUnlock()
	return calls
}

func (mock *recordingRepoMock) ListIDsByStatus(ctx context.Context, status domain.RecordingStatus, limit int) ([]uuid.UUID, error) {
	if mock.ListIDsByStatusFunc == nil {
		panic("recordingRepoMock.ListIDsByStatusFunc: method is nil but recordingRepo.ListIDsByStatus was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Status domain.RecordingStatus
		Limit  int
	}{Ctx: ctx, Status: status, Limit: limit}
	mock.lockListIDsByStatus.Lock()
	mock.calls.ListIDsByStatus = append(mock.calls.ListIDsByStatus, callInfo)
	mock.lockListIDsByStatus.Unlock()
	return mock.ListIDsByStatusFunc(ctx, status, limit)
}

func (mock *recordingRepoMock) ListIDsByStatusCalls() []struct {
	Ctx    context.Context
	Status domain.RecordingStatus
	Limit  int
} {
	mock.lockListIDsByStatus.RLock()
	calls := mock.calls.ListIDsByStatus
	mock.lockListIDsByStatus.RUnlock()
	return calls
}

var _ reviewRepo = &reviewRepoMock{}

type reviewRepoMock struct {
	CreateFunc func(ctx context.Context, item *domain.ReviewItem) error

	calls struct {
		Create []struct {
			Ctx  context.Context
			Item *domain.ReviewItem
		}
	}
	lockCreate sync.RWMutex
}

func (mock *reviewRepoMock) Create(ctx context.Context, item *domain.ReviewItem) error {
	if mock.CreateFunc == nil {
		panic("reviewRepoMock.CreateFunc: method is nil but reviewRepo.Create was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Item *domain.ReviewItem
	}{Ctx: ctx, Item: item}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, item)
}

func (mock *reviewRepoMock) CreateCalls() []struct {
	Ctx  context.Context
	Item *domain.ReviewItem
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

var _ catlogRepo = &catlogRepoMock{}

type catlogRepoMock struct {
	CreateFunc func(ctx context.Context, log *domain.CategorizationLog) error

	calls struct {
		Create []struct {
			Ctx context.Context
			Log *domain.CategorizationLog
		}
	}
	lockCreate sync.RWMutex
}

func (mock *catlogRepoMock) Create(ctx context.Context, log *domain.CategorizationLog) error {
	if mock.CreateFunc == nil {
		panic("catlogRepoMock.CreateFunc: method is nil but catlogRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Log *domain.CategorizationLog
	}{Ctx: ctx, Log: log}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, log)
}

func (mock *catlogRepoMock) CreateCalls() []struct {
	Ctx context.Context
	Log *domain.CategorizationLog
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
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

var _ audioStore = &audioStoreMock{}

type audioStoreMock struct {
	OpenFunc func(ctx context.Context, key string) (io.ReadCloser, error)

	calls struct {
		Open []struct {
			Ctx context.Context
			Key string
		}
	}
	lockOpen sync.RWMutex
}

func (mock *audioStoreMock) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if mock.OpenFunc == nil {
		panic("audioStoreMock.OpenFunc: method is nil but audioStore.Open was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockOpen.Lock()
	mock.calls.Open = append(mock.calls.Open, callInfo)
	mock.lockOpen.Unlock()
	return mock.OpenFunc(ctx, key)
}

func (mock *audioStoreMock) OpenCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockOpen.RLock()
	calls := mock.calls.Open
	mock.lockOpen.RUnlock()
	return calls
}

var _ transcriber = &transcriberMock{}

type transcriberMock struct {
	TranscribeFunc func(ctx context.Context, audio io.Reader, filename string) (*transcribe.Result, error)

	calls struct {
		Transcribe []struct {
			Ctx      context.Context
			Audio    io.Reader
			Filename string
		}
	}
	lockTranscribe sync.RWMutex
}

func (mock *transcriberMock) Transcribe(ctx context.Context, audio io.Reader, filename string) (*transcribe.Result, error) {
	if mock.TranscribeFunc == nil {
		panic("transcriberMock.TranscribeFunc: method is nil but transcriber.Transcribe was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		Audio    io.Reader
		Filename string
	}{Ctx: ctx, Audio: audio, Filename: filename}
	mock.lockTranscribe.Lock()
	mock.calls.Transcribe = append(mock.calls.Transcribe, callInfo)
	mock.lockTranscribe.Unlock()
	return mock.TranscribeFunc(ctx, audio, filename)
}

func (mock *transcriberMock) TranscribeCalls() []struct {
	Ctx      context.Context
	Audio    io.Reader
	Filename string
} {
	mock.lockTranscribe.RLock()
	calls := mock.calls.Transcribe
	mock.lockTranscribe.RUnlock()
	return calls
}

var _ analyzer = &analyzerMock{}

type analyzerMock struct {
	AnalyzeWithProgressFunc func(ctx context.Context, transcript string, onPhase func(domain.Phase)) (*analysis.Result, error)

	calls struct {
		AnalyzeWithProgress []struct {
			Ctx        context.Context
			Transcript string
			OnPhase    func(domain.Phase)
		}
	}
	lockAnalyzeWithProgress sync.RWMutex
}

func (mock *analyzerMock) AnalyzeWithProgress(ctx context.Context, transcript string, onPhase func(domain.Phase)) (*analysis.Result, error) {
	if mock.AnalyzeWithProgressFunc == nil {
		panic("analyzerMock.AnalyzeWithProgressFunc: method is nil but analyzer.AnalyzeWithProgress was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		Transcript string
		OnPhase    func(domain.Phase)
	}{Ctx: ctx, Transcript: transcript, OnPhase: onPhase}
	mock.lockAnalyzeWithProgress.Lock()
	mock.calls.AnalyzeWithProgress = append(mock.calls.AnalyzeWithProgress, callInfo)
	mock.lockAnalyzeWithProgress.Unlock()
	return mock.AnalyzeWithProgressFunc(ctx, transcript, onPhase)
}

func (mock *analyzerMock) AnalyzeWithProgressCalls() []struct {
	Ctx        context.Context
	Transcript string
	OnPhase    func(domain.Phase)
} {
	mock.lockAnalyzeWithProgress.RLock()
	calls := mock.calls.AnalyzeWithProgress
	mock.lockAnalyzeWithProgress.RUnlock()
	return calls
}

var _ alarm = &alarmMock{}

type alarmMock struct {
	RaiseFunc func(ctx context.Context, err error, tags map[string]string)

	calls struct {
		Raise []struct {
			Ctx  context.Context
			Err  error
			Tags map[string]string
		}
	}
	lockRaise sync.RWMutex
}

func (mock *alarmMock) Raise(ctx context.Context, err error, tags map[string]string) {
	if mock.RaiseFunc == nil {
		panic("alarmMock.RaiseFunc: method is nil but alarm.Raise was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Err  error
		Tags map[string]string
	}{Ctx: ctx, Err: err, Tags: tags}
	mock.lockRaise.Lock()
	mock.calls.Raise = append(mock.calls.Raise, callInfo)
	mock.lockRaise.Unlock()
	mock.RaiseFunc(ctx, err, tags)
}

func (mock *alarmMock) RaiseCalls() []struct {
	Ctx  context.Context
	Err  error
	Tags map[string]string
} {
	mock.lockRaise.RLock()
	calls := mock.calls.Raise
	mock.lockRaise.RUnlock()
	return calls
}

var _ jobSource = &jobSourceMock{}

type jobSourceMock struct {
	NextFunc func(ctx context.Context) (*Job, error)
	DoneFunc func(recordingID uuid.UUID)

	calls struct {
		Next []struct {
			Ctx context.Context
		}
		Done []struct {
			RecordingID uuid.UUID
		}
	}
	lockNext sync.RWMutex
	lockDone sync.RWMutex
}

func (mock *jobSourceMock) Next(ctx context.Context) (*Job, error) {
	if mock.NextFunc == nil {
		panic("jobSourceMock.NextFunc: method is nil but jobSource.Next was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockNext.Lock()
	mock.calls.Next = append(mock.calls.Next, callInfo)
	mock.lockNext.Unlock()
	return mock.NextFunc(ctx)
}

func (mock *jobSourceMock) NextCalls() []struct {
	Ctx context.Context
} {
	mock.lockNext.RLock()
	calls := mock.calls.Next
	mock.lockNext.RUnlock()
	return calls
}

func (mock *jobSourceMock) Done(recordingID uuid.UUID) {
	if mock.DoneFunc == nil {
		panic("jobSourceMock.DoneFunc: method is nil but jobSource.Done was just called")
	}
	callInfo := struct {
		RecordingID uuid.UUID
	}{RecordingID: recordingID}
	mock.lockDone.Lock()
	mock.calls.Done = append(mock.calls.Done, callInfo)
	mock.lockDone.Unlock()
	mock.DoneFunc(recordingID)
}

func (mock *jobSourceMock) DoneCalls() []struct {
	RecordingID uuid.UUID
} {
	mock.lockDone.RLock()
	calls := mock.calls.Done
	mock.lockDone.RUnlock()
	return calls
}

var _ jobProcessor = &jobProcessorMock{}

type jobProcessorMock struct {
	ProcessFunc func(ctx context.Context, job *Job) error

	calls struct {
		Process []struct {
			Ctx context.Context
			Job *Job
		}
	}
	lockProcess sync.RWMutex
}

func (mock *jobProcessorMock) Process(ctx context.Context, job *Job) error {
	if mock.ProcessFunc == nil {
		panic("jobProcessorMock.ProcessFunc: method is nil but jobProcessor.Process was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Job *Job
	}{Ctx: ctx, Job: job}
	mock.lockProcess.Lock()
	mock.calls.Process = append(mock.calls.Process, callInfo)
	mock.lockProcess.Unlock()
	return mock.ProcessFunc(ctx, job)
}

func (mock *jobProcessorMock) ProcessCalls() []struct {
	Ctx context.Context
	Job *Job
} {
	mock.lockProcess.RLock()
	calls := mock.calls.Process
	mock.lockProcess.RUnlock()
	return calls
}
