package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/notify"
	"github.com/heartmarshall/voicedoc-backend/pkg/ctxutil"
)

const (
	eventWriteTimeout = 5 * time.Second
	eventPingInterval = 30 * time.Second
)

type eventSubscriber interface {
	Subscribe(userID uuid.UUID) (<-chan notify.Event, func())
}

// EventsHandler streams the caller's pipeline phase events over a WebSocket.
type EventsHandler struct {
	hub            eventSubscriber
	originPatterns []string
	pingInterval   time.Duration
	log            *slog.Logger
}

// NewEventsHandler creates an EventsHandler. originPatterns is passed to
// the WebSocket handshake; nil allows same-origin only.
func NewEventsHandler(hub eventSubscriber, originPatterns []string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hub:            hub,
		originPatterns: originPatterns,
		pingInterval:   eventPingInterval,
		log:            logger.With("handler", "events"),
	}
}

// ServeHTTP handles GET /v1/events.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		// Accept has already written the response.
		h.log.WarnContext(r.Context(), "websocket handshake failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow() //nolint:errcheck

	events, cancel := h.hub.Subscribe(userID)
	defer cancel()

	// Clients only listen; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	h.log.DebugContext(ctx, "events subscribed", slog.String("user_id", userID.String()))
	err = h.stream(ctx, conn, events)
	switch {
	case err == nil:
		conn.Close(websocket.StatusGoingAway, "server shutting down") //nolint:errcheck
	case errors.Is(err, context.Canceled), websocket.CloseStatus(err) != -1:
	default:
		h.log.WarnContext(ctx, "events stream ended", slog.String("error", err.Error()))
	}
}

// stream forwards events until ctx ends or the hub closes the channel.
func (h *EventsHandler) stream(ctx context.Context, conn *websocket.Conn, events <-chan notify.Event) error {
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				return err
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
