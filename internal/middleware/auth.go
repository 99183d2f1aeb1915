package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/buzzware/cash/internal/auth"
	"github.com/buzzware/cash/internal/models"
	"github.com/buzzware/cash/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key for storing the authenticated user.
const userKey contextKey = "user"

// GetUser extracts the authenticated user from the context.
// Returns nil if not found.
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// WithUser returns a copy of ctx carrying the user. Exposed for tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireAuth returns a middleware that validates bearer tokens and
// resolves the caller to a stored user. When mustBeVerified is true,
// callers that have not passed KYC are rejected; unverified access is
// only allowed on the KYC endpoints themselves.
func RequireAuth(jwtManager *auth.JWTManager, store storage.Store, mustBeVerified bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			user, err := store.GetUserByID(r.Context(), claims.UserID)
			if err != nil || user == nil {
				unauthorized(w, "access denied")
				return
			}

			if mustBeVerified && !user.Verified {
				unauthorized(w, "user is not KYC verified yet")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
