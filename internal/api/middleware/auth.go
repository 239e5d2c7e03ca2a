package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/invisiblewalls/internal/api/apierr"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/auth"
)

type contextKey string

const (
	playerContextKey contextKey = "player"
	tokenContextKey  contextKey = "token"
)

// TokenCookie is the cookie a browser client keeps its bearer token in
const TokenCookie = "session"

// Auth creates authentication middleware. Requests without a valid token
// are rejected with 401.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			login, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := WithLogin(r.Context(), login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken reads the bearer token from the Authorization header, the
// session cookie, or the token query parameter, in that order. The query
// parameter exists for stream clients that cannot set headers.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// WithLogin stores an authenticated login and its player in ctx
func WithLogin(ctx context.Context, login *auth.Session) context.Context {
	ctx = context.WithValue(ctx, tokenContextKey, login)
	return context.WithValue(ctx, playerContextKey, &login.Player)
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// GetLogin returns the bearer token record from the request context
func GetLogin(ctx context.Context) *auth.Session {
	login, _ := ctx.Value(tokenContextKey).(*auth.Session)
	return login
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
