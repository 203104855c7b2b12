// Package review manages the per-user queue of processed recordings awaiting
// confirmation: listing, opening and reanalysis.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/analysis"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
	"github.com/heartmarshall/voicedoc-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type reviewRepo interface {
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewItem, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]domain.ReviewItem, error)
	Open(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewItem, error)
	UpdateAnalysis(ctx context.Context, userID, id uuid.UUID, transcript string, extracted domain.ExtractedData) (*domain.ReviewItem, error)
}

type catlogRepo interface {
	IncrementReanalysis(ctx context.Context, reviewItemID uuid.UUID) (int, error)
}

type analyzer interface {
	Analyze(ctx context.Context, transcript string) (*analysis.Result, error)
}

type auditLog interface {
	Append(ctx context.Context, ev domain.AuditEvent) (*domain.AuditEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// DefaultUrgentAfter is how long an item may wait before it is flagged.
const DefaultUrgentAfter = 24 * time.Hour

// MaxTranscriptLength bounds an edited transcript.
const MaxTranscriptLength = 50_000

// Service implements the review queue.
type Service struct {
	log         *slog.Logger
	reviews     reviewRepo
	catlogs     catlogRepo
	analyzer    analyzer
	audit       auditLog
	tx          txManager
	urgentAfter time.Duration
	now         func() time.Time
}

// NewService creates a review service.
func NewService(
	log *slog.Logger,
	reviews reviewRepo,
	catlogs catlogRepo,
	analyzer analyzer,
	auditLog auditLog,
	tx txManager,
	urgentAfter time.Duration,
) *Service {
	if urgentAfter <= 0 {
		urgentAfter = DefaultUrgentAfter
	}
	return &Service{
		log:         log.With("service", "review"),
		reviews:     reviews,
		catlogs:     catlogs,
		analyzer:    analyzer,
		audit:       auditLog,
		tx:          tx,
		urgentAfter: urgentAfter,
		now:         time.Now,
	}
}

// ListPending returns the caller's pending and in_review items, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]domain.ReviewItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	items, err := s.reviews.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	now := s.now()
	for i := range items {
		s.markUrgent(&items[i], now)
	}
	return items, nil
}

// Get returns one of the caller's items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	item, err := s.reviews.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get review item: %w", err)
	}
	s.markUrgent(item, s.now())
	return item, nil
}

// Open moves an item to in_review and records the access. Opening an item
// that is already in_review is not an error.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var item *domain.ReviewItem
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.reviews.Open(ctx, userID, id)
		if err != nil {
			return fmt.Errorf("open review item: %w", err)
		}

		_, err = s.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditReviewAccess,
			ActorID:      &userID,
			ResourceType: domain.ResourceReview,
			ResourceID:   item.ID,
		})
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markUrgent(item, s.now())
	return item, nil
}

// ReanalyzeInput is an edited transcript for one item.
type ReanalyzeInput struct {
	ReviewID   uuid.UUID
	Transcript string
}

// Validate checks all fields and collects all errors.
func (i *ReanalyzeInput) Validate() error {
	var errs []domain.FieldError

	if i.ReviewID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "review_id", Message: "required"})
	}
	if strings.TrimSpace(i.Transcript) == "" {
		errs = append(errs, domain.FieldError{Field: "transcript", Message: "required"})
	}
	if len(i.Transcript) > MaxTranscriptLength {
		errs = append(errs, domain.FieldError{Field: "transcript", Message: fmt.Sprintf("max %d bytes", MaxTranscriptLength)})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Reanalyze reruns analysis on an edited transcript and replaces the item's
// extraction. Nothing is written to the clinical tables; the item stays in
// review until it is confirmed.
func (s *Service) Reanalyze(ctx context.Context, input ReanalyzeInput) (*domain.ReviewItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	before, err := s.reviews.GetForUser(ctx, userID, input.ReviewID)
	if err != nil {
		return nil, fmt.Errorf("get review item: %w", err)
	}
	if before.Status.IsTerminal() {
		return nil, fmt.Errorf("review_item %s is %s: %w", before.ID, before.Status, domain.ErrTerminalState)
	}

	res, err := s.analyzer.Analyze(ctx, input.Transcript)
	if err != nil {
		return nil, fmt.Errorf("reanalyze: %w", err)
	}

	var (
		after *domain.ReviewItem
		count int
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		after, err = s.reviews.UpdateAnalysis(ctx, userID, input.ReviewID, input.Transcript, res.Extracted)
		if err != nil {
			return fmt.Errorf("update analysis: %w", err)
		}
		count, err = s.catlogs.IncrementReanalysis(ctx, input.ReviewID)
		if err != nil {
			return fmt.Errorf("increment reanalysis: %w", err)
		}

		_, err = s.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditReviewUpdate,
			ActorID:      &userID,
			ResourceType: domain.ResourceReview,
			ResourceID:   after.ID,
			Before:       audit.ReviewSnapshot(before),
			After:        audit.ReviewSnapshot(after),
		})
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review item reanalyzed",
		slog.String("user_id", userID.String()),
		slog.String("review_id", after.ID.String()),
		slog.Int("reanalysis_count", count),
		slog.Float64("confidence_before", before.OverallConfidence),
		slog.Float64("confidence_after", after.OverallConfidence),
	)

	s.markUrgent(after, s.now())
	return after, nil
}

func (s *Service) markUrgent(item *domain.ReviewItem, now time.Time) {
	item.IsUrgent = now.Sub(item.CreatedAt) > s.urgentAfter
}
