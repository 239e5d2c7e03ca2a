package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/invisiblewalls/internal/api/apierr"
	"github.com/mcoot/invisiblewalls/internal/api/handler"
	"github.com/mcoot/invisiblewalls/internal/api/middleware"
	"github.com/mcoot/invisiblewalls/internal/dependencies/clock"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/session"
)

// Controller is the part of the session controller live clients use
type Controller interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	Move(ctx context.Context, id model.SessionID, dx, dy int) (*session.MoveResult, error)
	Shuffle(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// Handler serves the event stream and websocket endpoints of a session
type Handler struct {
	controller Controller
	hubManager *HubManager
	clock      clock.Clock
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a new live Handler
func NewHandler(controller Controller, hubManager *HubManager, clk clock.Clock, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		hubManager: hubManager,
		clock:      clk,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With(slog.String("component", "live-handler")),
	}
}

// Events handles GET /sessions/{id}/events
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	s, err := handler.OwnedSession(r.Context(), h.controller, model.SessionID(mux.Vars(r)["id"]), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	err = h.withHub(s.ID, func(hub *Hub) error {
		return ServeSSE(w, r, hub, player.ID, h.greeting(r.Context(), s.ID))
	})
	if err != nil {
		h.logger.Warn("event stream failed",
			slog.String("session_id", string(s.ID)),
			slog.Any("error", err),
		)
		apierr.WriteError(w, err)
	}
}

// Websocket handles GET /sessions/{id}/ws
func (h *Handler) Websocket(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	s, err := handler.OwnedSession(r.Context(), h.controller, model.SessionID(mux.Vars(r)["id"]), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("session_id", string(s.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	// The request context ends with the handler, so the connection gets
	// its own for the commands it issues.
	ctx := context.WithoutCancel(r.Context())
	err = h.withHub(s.ID, func(hub *Hub) error {
		return ServeWebsocket(ctx, conn, hub, player.ID, h.greeting(ctx, s.ID), h.commandHandler(s.ID), h.logger)
	})
	if err != nil {
		h.logger.Warn("websocket session failed",
			slog.String("session_id", string(s.ID)),
			slog.Any("error", err),
		)
		_ = conn.Close()
	}
}

// withHub runs serve against the session's hub, retrying once if the hub
// was closed by a cleanup pass between lookup and registration
func (h *Handler) withHub(id model.SessionID, serve func(hub *Hub) error) error {
	err := serve(h.hubManager.GetOrCreateHub(id))
	if errors.Is(err, ErrHubClosed) {
		err = serve(h.hubManager.GetOrCreateHub(id))
	}
	return err
}

// greeting sends the current snapshot to a client that has just joined
func (h *Handler) greeting(ctx context.Context, id model.SessionID) Greeting {
	return func() ([]Message, error) {
		s, err := h.controller.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		msg, err := EventMessage(EventSnapshot, h.clock.Now(), s)
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	}
}

func (h *Handler) commandHandler(id model.SessionID) CommandHandler {
	return func(ctx context.Context, cmd Command) error {
		switch cmd.Type {
		case CommandMove:
			_, err := h.controller.Move(ctx, id, cmd.Dx, cmd.Dy)
			return err
		case CommandShuffle:
			_, err := h.controller.Shuffle(ctx, id)
			return err
		default:
			return apierr.NewInvalidRequestError(fmt.Sprintf("unknown command %q", cmd.Type))
		}
	}
}
