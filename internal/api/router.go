package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/invisiblewalls/internal/api/handler"
	"github.com/mcoot/invisiblewalls/internal/api/middleware"
	"github.com/mcoot/invisiblewalls/internal/services/auth"
	"github.com/mcoot/invisiblewalls/internal/services/bot"
	"github.com/mcoot/invisiblewalls/internal/services/results"
	"github.com/mcoot/invisiblewalls/internal/services/rounds"
	"github.com/mcoot/invisiblewalls/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	SessionController *session.Controller
	ResultsService    *results.Service
	RoundsService     *rounds.Service
	BotService        *bot.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.ResultsService, cfg.BotService)
	roundsHandler := handler.NewRoundsHandler(cfg.RoundsService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Session routes (all require auth)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/result", sessionHandler.Result).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/start", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/restart", sessionHandler.Restart).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/move", sessionHandler.Move).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/shuffle", sessionHandler.Shuffle).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/menu", sessionHandler.Menu).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/difficulty", sessionHandler.ChangeDifficulty).Methods(http.MethodPatch)
	sessions.HandleFunc("/{id}/autoplay", sessionHandler.Autoplay).Methods(http.MethodPost)

	// Round table and health check (no auth)
	api.HandleFunc("/rounds", roundsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
