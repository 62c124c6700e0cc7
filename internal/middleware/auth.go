package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jeotronix/fieldops/internal/auth"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Auth verifies Bearer tokens and puts the signed-in technician into the
// request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			actor, err := auth.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom extracts the signed-in technician from the request context
func ActorFrom(ctx context.Context) *auth.Actor {
	actor, _ := ctx.Value(actorContextKey).(*auth.Actor)
	return actor
}
