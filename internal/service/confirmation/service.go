// Package confirmation settles review items. Confirming writes the final data
// to the clinical tables; discarding writes nothing but the audit entry.
// Either way the item becomes terminal and exactly one concurrent caller wins.
package confirmation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
	"github.com/heartmarshall/voicedoc-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type reviewRepo interface {
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.ReviewItem, error)
	Finalize(ctx context.Context, userID, id uuid.UUID, status domain.ReviewStatus, at time.Time, extracted *domain.ExtractedData) (*domain.ReviewItem, error)
}

type clinicalRepo interface {
	Insert(ctx context.Context, rec domain.ClinicalRecord) error
}

type catlogRepo interface {
	SetConfirmed(ctx context.Context, reviewItemID, confirmedBy uuid.UUID, at time.Time) error
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

// ReviewerConfidence is recorded for a category the reviewer added that the
// model never extracted.
const ReviewerConfidence = 1.0

// Service implements confirmation and discard.
type Service struct {
	log      *slog.Logger
	reviews  reviewRepo
	clinical clinicalRepo
	catlogs  catlogRepo
	audit    auditLog
	tx       txManager
	now      func() time.Time
}

// NewService creates a confirmation service.
func NewService(
	log *slog.Logger,
	reviews reviewRepo,
	clinical clinicalRepo,
	catlogs catlogRepo,
	auditLog auditLog,
	tx txManager,
) *Service {
	return &Service{
		log:      log.With("service", "confirmation"),
		reviews:  reviews,
		clinical: clinical,
		catlogs:  catlogs,
		audit:    auditLog,
		tx:       tx,
		now:      time.Now,
	}
}

// ConfirmResult is a confirmed item and the clinical records written for it.
type ConfirmResult struct {
	Item    *domain.ReviewItem
	Records []domain.ClinicalRecord
}

// Confirm finalizes an item with the reviewer's data and writes one clinical
// record per category, all in one transaction. A caller that loses a race
// with another confirm or discard gets domain.ErrTerminalState.
func (s *Service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result ConfirmResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := s.reviews.GetForUser(ctx, userID, input.ReviewID)
		if err != nil {
			return fmt.Errorf("get review item: %w", err)
		}

		now := s.now().UTC()
		final := finalData(before.Extracted, input.Categories)

		item, err := s.reviews.Finalize(ctx, userID, input.ReviewID, domain.ReviewStatusConfirmed, now, &final)
		if err != nil {
			return fmt.Errorf("finalize review item: %w", err)
		}

		records := make([]domain.ClinicalRecord, 0, len(final.Categories))
		for _, c := range final.Categories {
			rec := domain.ClinicalRecord{
				ID:           uuid.New(),
				ReviewItemID: item.ID,
				RecordingID:  item.RecordingID,
				PatientID:    item.PatientID,
				RecordedBy:   userID,
				RecordedAt:   now,
				Confidence:   c.Confidence,
				Data:         c.Data,
			}
			if err := s.clinical.Insert(ctx, rec); err != nil {
				return fmt.Errorf("insert %s record: %w", c.Type, err)
			}
			records = append(records, rec)
		}

		if err := s.catlogs.SetConfirmed(ctx, item.ID, userID, now); err != nil {
			return fmt.Errorf("set confirmed: %w", err)
		}

		if _, err := s.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditReviewConfirm,
			ActorID:      &userID,
			ResourceType: domain.ResourceReview,
			ResourceID:   item.ID,
			Before:       audit.ReviewSnapshot(before),
			After:        audit.ReviewSnapshot(item),
		}); err != nil {
			return fmt.Errorf("audit confirm: %w", err)
		}
		for _, rec := range records {
			if _, err := s.audit.Append(ctx, domain.AuditEvent{
				Type:         domain.AuditClinicalCreate,
				ActorID:      &userID,
				ResourceType: domain.ResourceClinical,
				ResourceID:   rec.ID,
				After:        audit.ClinicalSnapshot(rec),
			}); err != nil {
				return fmt.Errorf("audit clinical record: %w", err)
			}
		}

		result = ConfirmResult{Item: item, Records: records}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review item confirmed",
		slog.String("user_id", userID.String()),
		slog.String("review_id", result.Item.ID.String()),
		slog.Int("records", len(result.Records)),
	)
	return &result, nil
}

// Discard finalizes an item without writing clinical data.
func (s *Service) Discard(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var item *domain.ReviewItem
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := s.reviews.GetForUser(ctx, userID, reviewID)
		if err != nil {
			return fmt.Errorf("get review item: %w", err)
		}

		item, err = s.reviews.Finalize(ctx, userID, reviewID, domain.ReviewStatusDiscarded, s.now().UTC(), nil)
		if err != nil {
			return fmt.Errorf("finalize review item: %w", err)
		}

		_, err = s.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditReviewDiscard,
			ActorID:      &userID,
			ResourceType: domain.ResourceReview,
			ResourceID:   item.ID,
			Before:       audit.ReviewSnapshot(before),
			After:        audit.ReviewSnapshot(item),
		})
		if err != nil {
			return fmt.Errorf("audit discard: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review item discarded",
		slog.String("user_id", userID.String()),
		slog.String("review_id", item.ID.String()),
	)
	return item, nil
}

// finalData builds the stored extraction from the reviewer's categories.
// Each category keeps the model's confidence when the model extracted it;
// rejected detections and the overall score are carried over unchanged.
func finalData(extracted domain.ExtractedData, categories []CategoryInput) domain.ExtractedData {
	model := make(map[domain.CategoryType]domain.CategoryResult, len(extracted.Categories))
	for _, c := range extracted.Categories {
		model[c.Type] = c
	}

	out := domain.ExtractedData{
		Categories:        make([]domain.CategoryResult, 0, len(categories)),
		Rejected:          extracted.Rejected,
		OverallConfidence: extracted.OverallConfidence,
	}
	for _, c := range categories {
		res := domain.CategoryResult{Type: c.Type, Confidence: ReviewerConfidence, Data: c.Data}
		if m, ok := model[c.Type]; ok {
			res.Confidence = m.Confidence
			res.FieldConfidences = m.FieldConfidences
		}
		out.Categories = append(out.Categories, res)
	}
	if out.Rejected == nil {
		out.Rejected = []domain.Detection{}
	}
	return out
}
