package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/transcribe"
)

const probeTimeout = 3 * time.Second

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type transcriptionProbe interface {
	Health(ctx context.Context) (*transcribe.Health, error)
}

type chainState interface {
	Tripped() bool
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db            dbPinger
	transcription transcriptionProbe
	chain         chainState
	version       string
}

// NewHealthHandler creates a HealthHandler. transcription and chain may be
// nil, in which case those components are not reported.
func NewHealthHandler(db dbPinger, transcription transcriptionProbe, chain chainState, version string) *HealthHandler {
	return &HealthHandler{db: db, transcription: transcription, chain: chain, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe. Pings DB: 200 if OK, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. The database and the audit chain are
// required; an unreachable transcription service only degrades, since
// uploads are still accepted and processed once it returns.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		components["database"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		components["database"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	if h.chain != nil {
		if h.chain.Tripped() {
			components["audit_chain"] = CompStatus{Status: "down", Detail: "integrity violation"}
			overallStatus = "down"
		} else {
			components["audit_chain"] = CompStatus{Status: "ok"}
		}
	}

	if h.transcription != nil {
		start = time.Now()
		th, err := h.transcription.Health(ctx)
		if err != nil {
			components["transcription"] = CompStatus{Status: "down"}
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
		} else {
			components["transcription"] = CompStatus{
				Status:  "ok",
				Latency: time.Since(start).String(),
				Detail:  th.Model,
			}
		}
	}

	status := http.StatusOK
	if overallStatus == "down" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
