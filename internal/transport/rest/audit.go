package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

type chainVerifier interface {
	Verify(ctx context.Context, fromSeq, toSeq int64) (domain.VerifyResult, error)
}

// AuditHandler exposes audit chain verification.
type AuditHandler struct {
	chain chainVerifier
	log   *slog.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(chain chainVerifier, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{chain: chain, log: logger.With("handler", "audit")}
}

type verifyResponse struct {
	Valid    bool   `json:"valid"`
	Checked  int    `json:"checked"`
	BrokenAt *int64 `json:"broken_at,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Verify handles GET /v1/audit/verify?from=&to=. Both bounds are optional
// sequence numbers. A broken chain answers 503 with the location.
func (h *AuditHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var errs []domain.FieldError
	from := querySeq(r, "from", &errs)
	to := querySeq(r, "to", &errs)
	if from > 0 && to > 0 && to < from {
		errs = append(errs, domain.FieldError{Field: "to", Message: "must be >= from"})
	}
	if len(errs) > 0 {
		handleError(h.log, w, r, domain.NewValidationErrors(errs))
		return
	}

	res, err := h.chain.Verify(r.Context(), from, to)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	status := http.StatusOK
	if !res.Valid {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, verifyResponse{
		Valid:    res.Valid,
		Checked:  res.Checked,
		BrokenAt: res.BrokenAt,
		Reason:   res.Reason,
	})
}

func querySeq(r *http.Request, name string, errs *[]domain.FieldError) int64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		*errs = append(*errs, domain.FieldError{Field: name, Message: "must be a positive sequence number"})
		return 0
	}
	return n
}
