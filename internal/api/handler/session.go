package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/invisiblewalls/internal/api/middleware"
	"github.com/mcoot/invisiblewalls/internal/api/request"
	"github.com/mcoot/invisiblewalls/internal/api/response"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/bot"
	"github.com/mcoot/invisiblewalls/internal/services/results"
	"github.com/mcoot/invisiblewalls/internal/services/session"
)

// SessionHandler handles play session endpoints
type SessionHandler struct {
	controller     *session.Controller
	resultsService *results.Service
	botService     *bot.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *session.Controller, resultsService *results.Service, botService *bot.Service) *SessionHandler {
	return &SessionHandler{
		controller:     controller,
		resultsService: resultsService,
		botService:     botService,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	s, err := h.controller.CreateSession(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(s))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	sessions, err := h.controller.ListSessions(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionSummariesFromModel(sessions))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.ownedSession(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s))
}

// Result handles GET /api/v1/sessions/{id}/result
func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	s, err := h.ownedSession(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.resultsService.Result(r.Context(), s.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultFromModel(result))
}

// Start handles POST /api/v1/sessions/{id}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.StartRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	mode := model.DefaultMode
	if req.Mode != "" {
		mode = model.Mode(req.Mode)
	}

	h.mutate(w, r, func(ctx context.Context, id model.SessionID) (*model.Session, error) {
		return h.controller.StartGame(ctx, id, mode, req.Round)
	})
}

// Restart handles POST /api/v1/sessions/{id}/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.controller.Restart)
}

// Shuffle handles POST /api/v1/sessions/{id}/shuffle
func (h *SessionHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.controller.Shuffle)
}

// Menu handles POST /api/v1/sessions/{id}/menu
func (h *SessionHandler) Menu(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.controller.GoToMenu)
}

// ChangeDifficulty handles PATCH /api/v1/sessions/{id}/difficulty
func (h *SessionHandler) ChangeDifficulty(w http.ResponseWriter, r *http.Request) {
	var req request.DifficultyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	h.mutate(w, r, func(ctx context.Context, id model.SessionID) (*model.Session, error) {
		return h.controller.ChangeDifficulty(ctx, id, model.Difficulty(req.Difficulty))
	})
}

// Move handles POST /api/v1/sessions/{id}/move
func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	s, err := h.ownedSession(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.controller.Move(r.Context(), s.ID, req.Dx, req.Dy)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoveResponse{
		Outcome: string(result.Outcome),
		Session: response.SessionFromModel(result.Session),
	})
}

// Autoplay handles POST /api/v1/sessions/{id}/autoplay
func (h *SessionHandler) Autoplay(w http.ResponseWriter, r *http.Request) {
	var req request.AutoplayRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.MaxMoves < 0 {
		WriteError(w, NewInvalidRequestError("max_moves must not be negative"))
		return
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = model.DefaultBotStrategy
	}

	s, err := h.ownedSession(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	actions, err := h.botService.Play(r.Context(), s.ID, strategy, req.MaxMoves)
	if err != nil {
		WriteError(w, err)
		return
	}

	latest, err := h.controller.GetSession(r.Context(), s.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AutoplayResponseFromActions(strategy, actions, latest))
}

// mutate checks ownership, applies op and writes the resulting snapshot
func (h *SessionHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id model.SessionID) (*model.Session, error)) {
	s, err := h.ownedSession(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	updated, err := op(r.Context(), s.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// ownedSession loads the session named in the path and checks that it
// belongs to the authenticated player
func (h *SessionHandler) ownedSession(r *http.Request) (*model.Session, error) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	return OwnedSession(r.Context(), h.controller, id, player.ID)
}

// SessionGetter loads sessions by ID
type SessionGetter interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// OwnedSession loads a session and checks that playerID owns it
func OwnedSession(ctx context.Context, sessions SessionGetter, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	s, err := sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.PlayerID != playerID {
		return nil, model.ErrNotSessionOwner
	}
	return s, nil
}

// decodeOptional decodes a JSON body that may be omitted entirely
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
