package middleware

import (
	"net/http"

	apimiddleware "github.com/mcoot/invisiblewalls/internal/api/middleware"
	"github.com/mcoot/invisiblewalls/internal/services/auth"
)

// Auth returns middleware that requires a valid token for live endpoints.
// Browsers' EventSource and WebSocket cannot set headers, so besides the
// bearer header the token is read from the session cookie or the token
// query parameter. Unauthenticated requests get a JSON 401.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return apimiddleware.Auth(authService)
}
