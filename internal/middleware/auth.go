package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/foodieshare/foodieshare-backend/internal/services"
)

type contextKey int

const userContextKey contextKey = iota

// AuthUser is the identity attached to an authenticated request.
type AuthUser struct {
	ID    string
	Email string
}

// TokenVerifier is satisfied by *services.TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user set by RequireAuth.
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(AuthUser)
	return user, ok
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return requireAuth(verifier, false)
}

// RequireAuthAllowQuery also accepts ?token=, for WebSocket clients that
// cannot set headers.
func RequireAuthAllowQuery(verifier TokenVerifier) func(http.Handler) http.Handler {
	return requireAuth(verifier, true)
}

func requireAuth(verifier TokenVerifier, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && allowQuery {
				token = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, services.ErrInvalidToken.Message)
				return
			}

			ctx := WithUser(r.Context(), AuthUser{ID: claims.ID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
