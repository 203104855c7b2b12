package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/confirmation"
	"github.com/heartmarshall/voicedoc-backend/internal/service/intake"
	"github.com/heartmarshall/voicedoc-backend/internal/service/review"
)

var _ intakeService = &intakeServiceMock{}

type intakeServiceMock struct {
	SubmitFunc func(ctx context.Context, input intake.SubmitInput) (*domain.Recording, error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (*domain.Recording, error)

	calls struct {
		Submit []struct {
			Ctx   context.Context
			Input intake.SubmitInput
		}
		Get []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
	}
	lockSubmit sync.RWMutex
	lockGet    sync.RWMutex
}

func (mock *intakeServiceMock) Submit(ctx context.Context, input intake.SubmitInput) (*domain.Recording, error) {
	if mock.SubmitFunc == nil {
		panic("intakeServiceMock.SubmitFunc: method is nil but intakeService.Submit was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input intake.SubmitInput
	}{Ctx: ctx, Input: input}
	mock.lockSubmit.Lock()
	mock.calls.Submit = append(mock.calls.Submit, callInfo)
	mock.lockSubmit.Unlock()
	return mock.SubmitFunc(ctx, input)
}

func (mock *intakeServiceMock) SubmitCalls() []struct {
	Ctx   context.Context
	Input intake.SubmitInput
} {
	mock.lockSubmit.RLock()
	calls := mock.calls.Submit
	mock.lockSubmit.RUnlock()
	return calls
}

func (mock *intakeServiceMock) Get(ctx context.Context, id uuid.UUID) (*domain.Recording, error) {
	if mock.GetFunc == nil {
		panic("intakeServiceMock.GetFunc: method is nil but intakeService.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, id)
}

func (mock *intakeServiceMock) GetCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

var _ reviewService = &reviewServiceMock{}

type reviewServiceMock struct {
	ListPendingFunc func(ctx context.Context) ([]domain.ReviewItem, error)
	GetFunc         func(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)
	OpenFunc        func(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)
	ReanalyzeFunc   func(ctx context.Context, input review.ReanalyzeInput) (*domain.ReviewItem, error)

	calls struct {
		ListPending []struct {
			Ctx context.Context
		}
		Get []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Open []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Reanalyze []struct {
			Ctx   context.Context
			Input review.ReanalyzeInput
		}
	}
	lockListPending sync.RWMutex
	lockGet         sync.RWMutex
	lockOpen        sync.RWMutex
	lockReanalyze   sync.RWMutex
}

func (mock *reviewServiceMock) ListPending(ctx context.Context) ([]domain.ReviewItem, error) {
	if mock.ListPendingFunc == nil {
		panic("reviewServiceMock.ListPendingFunc: method is nil but reviewService.ListPending was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockListPending.Lock()
	mock.calls.ListPending = append(mock.calls.ListPending, callInfo)
	mock.lockListPending.Unlock()
	return mock.ListPendingFunc(ctx)
}

func (mock *reviewServiceMock) ListPendingCalls() []struct {
	Ctx context.Context
} {
	mock.lockListPending.RLock()
	calls := mock.calls.ListPending
	mock.lockListPending.RUnlock()
	return calls
}

func (mock *reviewServiceMock) Get(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	if mock.GetFunc == nil {
		panic("reviewServiceMock.GetFunc: method is nil but reviewService.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, id)
}

func (mock *reviewServiceMock) GetCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *reviewServiceMock) Open(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	if mock.OpenFunc == nil {
		panic("reviewServiceMock.OpenFunc: method is nil but reviewService.Open was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockOpen.Lock()
	mock.calls.Open = append(mock.calls.Open, callInfo)
	mock.lockOpen.Unlock()
	return mock.OpenFunc(ctx, id)
}

func (mock *reviewServiceMock) OpenCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockOpen.RLock()
	calls := mock.calls.Open
	mock.lockOpen.RUnlock()
	return calls
}

func (mock *reviewServiceMock) Reanalyze(ctx context.Context, input review.ReanalyzeInput) (*domain.ReviewItem, error) {
	if mock.ReanalyzeFunc == nil {
		panic("reviewServiceMock.ReanalyzeFunc: method is nil but reviewService.Reanalyze was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input review.ReanalyzeInput
	}{Ctx: ctx, Input: input}
	mock.lockReanalyze.Lock()
	mock.calls.Reanalyze = append(mock.calls.Reanalyze, callInfo)
	mock.lockReanalyze.Unlock()
	return mock.ReanalyzeFunc(ctx, input)
}

func (mock *reviewServiceMock) ReanalyzeCalls() []struct {
	Ctx   context.Context
	Input review.ReanalyzeInput
} {
	mock.lockReanalyze.RLock()
	calls := mock.calls.Reanalyze
	mock.lockReanalyze.RUnlock()
	return calls
}

var _ confirmationService = &confirmationServiceMock{}

type confirmationServiceMock struct {
	ConfirmFunc func(ctx context.Context, input confirmation.ConfirmInput) (*confirmation.ConfirmResult, error)
	DiscardFunc func(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewItem, error)

	calls struct {
		Confirm []struct {
			Ctx   context.Context
			Input confirmation.ConfirmInput
		}
		Discard []struct {
			Ctx      context.Context
			ReviewID uuid.UUID
		}
	}
	lockConfirm sync.RWMutex
	lockDiscard sync.RWMutex
}

func (mock *confirmationServiceMock) Confirm(ctx context.Context, input confirmation.ConfirmInput) (*confirmation.ConfirmResult, error) {
	if mock.ConfirmFunc == nil {
		panic("confirmationServiceMock.ConfirmFunc: method is nil but confirmationService.Confirm was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input confirmation.ConfirmInput
	}{Ctx: ctx, Input: input}
	mock.lockConfirm.Lock()
	mock.calls.Confirm = append(mock.calls.Confirm, callInfo)
	mock.lockConfirm.Unlock()
	return mock.ConfirmFunc(ctx, input)
}

func (mock *confirmationServiceMock) ConfirmCalls() []struct {
	Ctx   context.Context
	Input confirmation.ConfirmInput
} {
	mock.lockConfirm.RLock()
	calls := mock.calls.Confirm
	mock.lockConfirm.RUnlock()
	return calls
}

func (mock *confirmationServiceMock) Discard(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewItem, error) {
	if mock.DiscardFunc == nil {
		panic("confirmationServiceMock.DiscardFunc: method is nil but confirmationService.Discard was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ReviewID uuid.UUID
	}{Ctx: ctx, ReviewID: reviewID}
	mock.lockDiscard.Lock()
	mock.calls.Discard = append(mock.calls.Discard, callInfo)
	mock.lockDiscard.Unlock()
	return mock.DiscardFunc(ctx, reviewID)
}

func (mock *confirmationServiceMock) DiscardCalls() []struct {
	Ctx      context.Context
	ReviewID uuid.UUID
} {
	mock.lockDiscard.RLock()
	calls := mock.calls.Discard
	mock.lockDiscard.RUnlock()
	return calls
}

var _ chainVerifier = &chainVerifierMock{}

type chainVerifierMock struct {
	VerifyFunc func(ctx context.Context, fromSeq int64, toSeq int64) (domain.VerifyResult, error)

	calls struct {
		Verify []struct {
			Ctx     context.Context
			FromSeq int64
			ToSeq   int64
		}
	}
	lockVerify sync.RWMutex
}

func (mock *chainVerifierMock) Verify(ctx context.Context, fromSeq int64, toSeq int64) (domain.VerifyResult, error) {
	if mock.VerifyFunc == nil {
		panic("chainVerifierMock.VerifyFunc: method is nil but chainVerifier.Verify was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		FromSeq int64
		ToSeq   int64
	}{Ctx: ctx, FromSeq: fromSeq, ToSeq: toSeq}
	mock.lockVerify.Lock()
	mock.calls.Verify = append(mock.calls.Verify, callInfo)
	mock.lockVerify.Unlock()
	return mock.VerifyFunc(ctx, fromSeq, toSeq)
}

func (mock *chainVerifierMock) VerifyCalls() []struct {
	Ctx     context.Context
	FromSeq int64
	ToSeq   int64
} {
	mock.lockVerify.RLock()
	calls := mock.calls.Verify
	mock.lockVerify.RUnlock()
	return calls
}
