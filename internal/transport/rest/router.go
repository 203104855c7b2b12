package rest

import (
	"net/http"

	"github.com/heartmarshall/voicedoc-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts. Metrics may be nil.
type Handlers struct {
	Recordings *RecordingHandler
	Reviews    *ReviewHandler
	Events     http.Handler
	Audit      *AuditHandler
	Health     *HealthHandler
	Metrics    http.Handler
}

// NewRouter registers every route. auth guards the /v1 API; uploadLimit,
// if set, additionally guards recording uploads and runs after auth so it
// can key on the user.
func NewRouter(h Handlers, auth, uploadLimit middleware.Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	api := func(fn http.HandlerFunc) http.Handler { return auth(fn) }

	mux.Handle("POST /v1/recordings", middleware.Chain(auth, uploadLimit)(http.HandlerFunc(h.Recordings.Submit)))
	mux.Handle("GET /v1/recordings/{id}", api(h.Recordings.Get))

	mux.Handle("GET /v1/reviews", api(h.Reviews.List))
	mux.Handle("GET /v1/reviews/{id}", api(h.Reviews.Get))
	mux.Handle("POST /v1/reviews/{id}/open", api(h.Reviews.Open))
	mux.Handle("POST /v1/reviews/{id}/reanalyze", api(h.Reviews.Reanalyze))
	mux.Handle("POST /v1/reviews/{id}/confirm", api(h.Reviews.Confirm))
	mux.Handle("POST /v1/reviews/{id}/discard", api(h.Reviews.Discard))

	mux.Handle("GET /v1/events", auth(h.Events))
	mux.Handle("GET /v1/audit/verify", api(h.Audit.Verify))

	return mux
}
