package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// Auth rejects requests without a valid access token. The resolved user is
// stored in the request context.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			user, err := authService.VerifyAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the user when a valid token is present but lets
// anonymous requests through. Listing endpoints use it to fill in
// viewer-specific fields.
func OptionalAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if user, err := authService.VerifyAccess(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// GetUserID returns the authenticated user's ID, or 0 for anonymous
// requests.
func GetUserID(ctx context.Context) uint {
	if user, ok := GetUser(ctx); ok {
		return user.ID
	}
	return 0
}
