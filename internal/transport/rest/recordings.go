package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/service/intake"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

type intakeService interface {
	Submit(ctx context.Context, input intake.SubmitInput) (*domain.Recording, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Recording, error)
}

// RecordingHandler serves audio uploads and recording status.
type RecordingHandler struct {
	svc      intakeService
	maxBytes int64
	log      *slog.Logger
}

// NewRecordingHandler creates a RecordingHandler. maxBytes bounds the whole
// multipart body.
func NewRecordingHandler(svc intakeService, maxBytes int64, logger *slog.Logger) *RecordingHandler {
	return &RecordingHandler{svc: svc, maxBytes: maxBytes, log: logger.With("handler", "recordings")}
}

type recordingResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	ContextKind     string     `json:"context_kind,omitempty"`
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	DurationSeconds float64    `json:"duration,omitempty"`
	CapturedAt      *time.Time `json:"captured_at,omitempty"`
	Error           *string    `json:"error,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// Submit handles POST /v1/recordings.
func (h *RecordingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("audio")
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("audio", "required"))
		return
	}
	defer file.Close()

	input, err := parseSubmitForm(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	input.Audio = file
	input.Filename = header.Filename
	input.Size = header.Size

	rec, err := h.svc.Submit(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, recordingResponse{ID: rec.ID.String(), Status: rec.Status.String()})
}

// Get handles GET /v1/recordings/{id}.
func (h *RecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordingResponse(rec))
}

// parseSubmitForm converts the non-file form fields. Syntax errors are
// reported per field; semantic checks are left to the service.
func parseSubmitForm(r *http.Request) (intake.SubmitInput, error) {
	var (
		in   intake.SubmitInput
		errs []domain.FieldError
	)

	in.ContextKind = domain.ContextKind(r.FormValue("context_kind"))

	if v := r.FormValue("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "patient_id", Message: "must be a UUID"})
		} else {
			in.PatientID = &id
		}
	}

	if v := r.FormValue("duration"); v == "" {
		errs = append(errs, domain.FieldError{Field: "duration", Message: "required"})
	} else if d, err := strconv.ParseFloat(v, 64); err != nil {
		errs = append(errs, domain.FieldError{Field: "duration", Message: "must be a number of seconds"})
	} else {
		in.DurationSeconds = d
	}

	if v := r.FormValue("captured_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "captured_at", Message: "must be RFC 3339"})
		} else {
			in.CapturedAt = &t
		}
	}

	if v := r.FormValue("chunk_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "chunk_count", Message: "must be an integer"})
		} else {
			in.ChunkCount = &n
		}
	}

	if v := r.FormValue("stream_session_id"); v != "" {
		in.StreamSessionID = &v
	}

	if len(errs) > 0 {
		return in, domain.NewValidationErrors(errs)
	}
	return in, nil
}

func toRecordingResponse(rec *domain.Recording) recordingResponse {
	captured, created := rec.CapturedAt, rec.CreatedAt
	return recordingResponse{
		ID:              rec.ID.String(),
		Status:          rec.Status.String(),
		ContextKind:     rec.ContextKind.String(),
		PatientID:       rec.PatientID,
		DurationSeconds: rec.DurationSeconds,
		CapturedAt:      &captured,
		Error:           rec.ProcessingError,
		CreatedAt:       &created,
	}
}
