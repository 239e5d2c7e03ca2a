package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/invisiblewalls/internal/middleware"
)

// Logging creates logging middleware for the live endpoints
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
