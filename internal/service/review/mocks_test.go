package review

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/analysis"
)

var _ reviewRepo = &reviewRepoMock{}

type reviewRepoMock struct {
	GetForUserFunc     func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.ReviewItem, error)
	ListPendingFunc    func(ctx context.Context, userID uuid.UUID) ([]domain.ReviewItem, error)
	OpenFunc           func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.ReviewItem, error)
	UpdateAnalysisFunc func(ctx context.Context, userID uuid.UUID, id uuid.UUID, transcript string, extracted domain.ExtractedData) (*domain.ReviewItem, error)

	calls struct {
		GetForUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
		ListPending []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
		Open []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
		UpdateAnalysis []struct {
			Ctx        context.Context
			UserID     uuid.UUID
			ID         uuid.UUID
			Transcript string
			Extracted  domain.ExtractedData
		}
	}
	lockGetForUser     sync.RWMutex
	lockListPending    sync.RWMutex
	lockOpen           sync.RWMutex
	lockUpdateAnalysis sync.RWMutex
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

func (mock *reviewRepoMock) ListPending(ctx context.Context, userID uuid.UUID) ([]domain.ReviewItem, error) {
	if mock.ListPendingFunc == nil {
		panic("reviewRepoMock.ListPendingFunc: method is nil but reviewRepo.ListPending was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockListPending.Lock()
	mock.calls.ListPending = append(mock.calls.ListPending, callInfo)
	mock.lockListPending.Unlock()
	return mock.ListPendingFunc(ctx, userID)
}

func (mock *reviewRepoMock) ListPendingCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockListPending.RLock()
	calls := mock.calls.ListPending
	mock.lockListPending.RUnlock()
	return calls
}

func (mock *reviewRepoMock) Open(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.ReviewItem, error) {
	if mock.OpenFunc == nil {
		panic("reviewRepoMock.OpenFunc: method is nil but reviewRepo.Open was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
	}{Ctx: ctx, UserID: userID, ID: id}
	mock.lockOpen.Lock()
	mock.calls.Open = append(mock.calls.Open, callInfo)
	mock.lockOpen.Unlock()
	return mock.OpenFunc(ctx, userID, id)
}

func (mock *reviewRepoMock) OpenCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	ID     uuid.UUID
} {
	mock.lockOpen.RLock()
	calls := mock.calls.Open
	mock.lockOpen.RUnlock()
	return calls
}

func (mock *reviewRepoMock) UpdateAnalysis(ctx context.Context, userID uuid.UUID, id uuid.UUID, transcript string, extracted domain.ExtractedData) (*domain.ReviewItem, error) {
	if mock.UpdateAnalysisFunc == nil {
		panic("reviewRepoMock.UpdateAnalysisFunc: method is nil but reviewRepo.UpdateAnalysis was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		UserID     uuid.UUID
		ID         uuid.UUID
		Transcript string
		Extracted  domain.ExtractedData
	}{Ctx: ctx, UserID: userID, ID: id, Transcript: transcript, Extracted: extracted}
	mock.lockUpdateAnalysis.Lock()
	mock.calls.UpdateAnalysis = append(mock.calls.UpdateAnalysis, callInfo)
	mock.lockUpdateAnalysis.Unlock()
	return mock.UpdateAnalysisFunc(ctx, userID, id, transcript, extracted)
}

func (mock *reviewRepoMock) UpdateAnalysisCalls() []struct {
	Ctx        context.Context
	UserID     uuid.UUID
	ID         uuid.UUID
	Transcript string
	Extracted  domain.ExtractedData
} {
	mock.lockUpdateAnalysis.RLock()
	calls := mock.calls.UpdateAnalysis
	mock.lockUpdateAnalysis.RUnlock()
	return calls
}

var _ catlogRepo = &catlogRepoMock{}

type catlogRepoMock struct {
	IncrementReanalysisFunc func(ctx context.Context, reviewItemID uuid.UUID) (int, error)

	calls struct {
		IncrementReanalysis []struct {
			Ctx          context.Context
			ReviewItemID uuid.UUID
		}
	}
	lockIncrementReanalysis sync.RWMutex
}

func (mock *catlogRepoMock) IncrementReanalysis(ctx context.Context, reviewItemID uuid.UUID) (int, error) {
	if mock.IncrementReanalysisFunc == nil {
		panic("catlogRepoMock.IncrementReanalysisFunc: method is nil but catlogRepo.IncrementReanalysis was just called")
	}
	callInfo := struct {
		Ctx          context.Context
		ReviewItemID uuid.UUID
	}{Ctx: ctx, ReviewItemID: reviewItemID}
	mock.lockIncrementReanalysis.Lock()
	mock.calls.IncrementReanalysis = append(mock.calls.IncrementReanalysis, callInfo)
	mock.lockIncrementReanalysis.Unlock()
	return mock.IncrementReanalysisFunc(ctx, reviewItemID)
}

func (mock *catlogRepoMock) IncrementReanalysisCalls() []struct {
	Ctx          context.Context
	ReviewItemID uuid.UUID
} {
	mock.lockIncrementReanalysis.RLock()
	calls := mock.calls.IncrementReanalysis
	mock.lockIncrementReanalysis.RUnlock()
	return calls
}

var _ analyzer = &analyzerMock{}

type analyzerMock struct {
	AnalyzeFunc func(ctx context.Context, transcript string) (*analysis.Result, error)

	calls struct {
		Analyze []struct {
			Ctx        context.Context
			Transcript string
		}
	}
	lockAnalyze sync.RWMutex
}

func (mock *analyzerMock) Analyze(ctx context.Context, transcript string) (*analysis.Result, error) {
	if mock.AnalyzeFunc == nil {
		panic("analyzerMock.AnalyzeFunc: method is nil but analyzer.Analyze was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		Transcript string
	}{Ctx: ctx, Transcript: transcript}
	mock.lockAnalyze.Lock()
	mock.calls.Analyze = append(mock.calls.Analyze, callInfo)
	mock.lockAnalyze.Unlock()
	return mock.AnalyzeFunc(ctx, transcript)
}

func (mock *analyzerMock) AnalyzeCalls() []struct {
	Ctx        context.Context
	Transcript string
} {
	mock.lockAnalyze.RLock()
	calls := mock.calls.Analyze
	mock.lockAnalyze.RUnlock()
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
