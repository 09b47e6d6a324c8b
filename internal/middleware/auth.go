package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wavenotes/wavenotes-api/internal/model"
	"github.com/wavenotes/wavenotes-api/internal/repository"
	"github.com/wavenotes/wavenotes-api/shared/auth"
)

type contextKey struct{}

var userContextKey = contextKey{}

// UserFromContext returns the authenticated user attached by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)

	return user, ok
}

// Authenticate verifies the session token carried by the request and loads
// the matching account. The token is read from "Authorization: Bearer",
// a raw Authorization value, or the x-access-token / token headers. A token
// whose account no longer exists is rejected.
func Authenticate(tokenAuth auth.TokenAuthenticator, userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "Access denied. No token provided.")
				return
			}

			claims, err := tokenAuth.Verify(token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					writeUnauthorized(w, "Token expired.")
				case errors.Is(err, auth.ErrMissingSubject):
					writeUnauthorized(w, "Invalid token payload.")
				default:
					writeUnauthorized(w, "Invalid token.")
				}

				return
			}

			userID, err := claims.Subject()
			if err != nil {
				writeUnauthorized(w, "Invalid token payload.")
				return
			}

			user, err := userRepo.GetUser(r.Context(), userID)
			if err != nil {
				writeUnauthorized(w, "Invalid token. User not found.")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		authHeader = strings.TrimSpace(after)
	}
	if authHeader != "" {
		return authHeader
	}

	for _, header := range []string{"x-access-token", "token"} {
		if value := strings.TrimSpace(r.Header.Get(header)); value != "" {
			return value
		}
	}

	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
