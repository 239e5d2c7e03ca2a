package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/invisiblewalls/internal/dependencies/clock"
	"github.com/mcoot/invisiblewalls/internal/services/auth"
	"github.com/mcoot/invisiblewalls/internal/web/live"
	"github.com/mcoot/invisiblewalls/internal/web/middleware"
)

// RouterConfig holds configuration for the live updates router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Controller  live.Controller
	HubManager  *live.HubManager
	Clock       clock.Clock
}

// NewRouter creates the router for session event streams and websockets
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = live.NewHubManager(cfg.Logger)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	liveHandler := live.NewHandler(cfg.Controller, hubManager, clk, cfg.Logger)

	sessions := r.PathPrefix("/sessions").Subrouter()
	sessions.Use(middleware.Auth(cfg.AuthService))
	sessions.HandleFunc("/{id}/events", liveHandler.Events).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/ws", liveHandler.Websocket).Methods(http.MethodGet)

	return r
}
