package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/confirmation"
	"github.com/heartmarshall/voicedoc-backend/internal/service/review"
)

type reviewService interface {
	ListPending(ctx context.Context) ([]domain.ReviewItem, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)
	Open(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)
	Reanalyze(ctx context.Context, input review.ReanalyzeInput) (*domain.ReviewItem, error)
}

type confirmationService interface {
	Confirm(ctx context.Context, input confirmation.ConfirmInput) (*confirmation.ConfirmResult, error)
	Discard(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewItem, error)
}

// ReviewHandler serves the review queue.
type ReviewHandler struct {
	reviews reviewService
	confirm confirmationService
	log     *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews reviewService, confirm confirmationService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, confirm: confirm, log: logger.With("handler", "reviews")}
}

type reviewResponse struct {
	ID                string               `json:"id"`
	RecordingID       string               `json:"recording_id"`
	ContextKind       string               `json:"context_kind"`
	PatientID         *uuid.UUID           `json:"patient_id,omitempty"`
	Transcript        string               `json:"transcript"`
	Language          string               `json:"language,omitempty"`
	Extracted         domain.ExtractedData `json:"extracted"`
	OverallConfidence float64              `json:"overall_confidence"`
	Status            string               `json:"status"`
	IsUrgent          bool                 `json:"is_urgent"`
	CreatedAt         time.Time            `json:"created_at"`
	ReviewedAt        *time.Time           `json:"reviewed_at,omitempty"`
}

type clinicalRecordResponse struct {
	ID         string              `json:"id"`
	Type       domain.CategoryType `json:"type"`
	Confidence float64             `json:"confidence"`
	RecordedAt time.Time           `json:"recorded_at"`
	Data       domain.CategoryData `json:"data"`
}

type confirmResponse struct {
	Review  reviewResponse           `json:"review"`
	Records []clinicalRecordResponse `json:"records"`
}

type reanalyzeRequest struct {
	Transcript string `json:"transcript"`
}

type confirmRequest struct {
	Categories []categoryRequest `json:"categories"`
}

type categoryRequest struct {
	Type domain.CategoryType `json:"type"`
	Data json.RawMessage     `json:"data"`
}

// List handles GET /v1/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.reviews.ListPending(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]reviewResponse, len(items))
	for i := range items {
		out[i] = toReviewResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// Get handles GET /v1/reviews/{id}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.reviews.Get)
}

// Open handles POST /v1/reviews/{id}/open.
func (h *ReviewHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.reviews.Open)
}

// Discard handles POST /v1/reviews/{id}/discard.
func (h *ReviewHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.confirm.Discard)
}

// Reanalyze handles POST /v1/reviews/{id}/reanalyze.
func (h *ReviewHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req reanalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	item, err := h.reviews.Reanalyze(r.Context(), review.ReanalyzeInput{ReviewID: id, Transcript: req.Transcript})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(item))
}

// Confirm handles POST /v1/reviews/{id}/confirm.
func (h *ReviewHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input, err := toConfirmInput(id, req)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.confirm.Confirm(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	records := make([]clinicalRecordResponse, len(res.Records))
	for i, rec := range res.Records {
		records[i] = clinicalRecordResponse{
			ID:         rec.ID.String(),
			Type:       rec.Type(),
			Confidence: rec.Confidence,
			RecordedAt: rec.RecordedAt,
			Data:       rec.Data,
		}
	}
	writeJSON(w, http.StatusOK, confirmResponse{Review: toReviewResponse(res.Item), Records: records})
}

func (h *ReviewHandler) withItem(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*domain.ReviewItem, error)) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	item, err := fn(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(item))
}

// toConfirmInput decodes each category payload into its typed variant.
// Unknown types pass through without data so the service reports them
// alongside any other field errors.
func toConfirmInput(id uuid.UUID, req confirmRequest) (confirmation.ConfirmInput, error) {
	in := confirmation.ConfirmInput{ReviewID: id, Categories: make([]confirmation.CategoryInput, len(req.Categories))}

	var errs []domain.FieldError
	for i, c := range req.Categories {
		in.Categories[i].Type = c.Type
		if !c.Type.IsValid() || len(c.Data) == 0 || string(c.Data) == "null" {
			continue
		}
		data, err := domain.DecodeCategoryDataStrict(c.Type, c.Data)
		var unknown *domain.UnknownFieldError
		switch {
		case errors.As(err, &unknown):
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("categories[%d].data.%s", i, unknown.Field), Message: "unknown field"})
			continue
		case err != nil:
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("categories[%d].data", i), Message: "malformed " + c.Type.String() + " payload"})
			continue
		}
		in.Categories[i].Data = data
	}

	if len(errs) > 0 {
		return in, domain.NewValidationErrors(errs)
	}
	return in, nil
}

func toReviewResponse(item *domain.ReviewItem) reviewResponse {
	return reviewResponse{
		ID:                item.ID.String(),
		RecordingID:       item.RecordingID.String(),
		ContextKind:       item.ContextKind.String(),
		PatientID:         item.PatientID,
		Transcript:        item.Transcript,
		Language:          item.Language,
		Extracted:         item.Extracted,
		OverallConfidence: item.OverallConfidence,
		Status:            item.Status.String(),
		IsUrgent:          item.IsUrgent,
		CreatedAt:         item.CreatedAt,
		ReviewedAt:        item.ReviewedAt,
	}
}
