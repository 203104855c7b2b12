package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/voicedoc-backend/pkg/ctxutil"
)

// Alarm reports a recovered panic to an error tracker.
type Alarm interface {
	Raise(ctx context.Context, err error, tags map[string]string)
}

// Recovery returns middleware that recovers from panics, logs the error
// with a stack trace, reports it when alarm is non-nil, and responds with
// 500 Internal Server Error.
func Recovery(logger *slog.Logger, alarm Alarm) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}

				stack := debug.Stack()
				logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("error", rv),
					slog.String("stack", string(stack)),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				if alarm != nil {
					alarm.Raise(r.Context(), fmt.Errorf("http handler panic: %v", rv), map[string]string{
						"component":  "http",
						"path":       r.URL.Path,
						"request_id": ctxutil.RequestIDFromCtx(r.Context()),
					})
				}
				writeError(w, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
