// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"passvault/internal/errs"
	"passvault/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// UserResolver maps the authenticated username to a user identity.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// CertAuth enforces mutual TLS authentication. The Common Name (CN) of the
// client certificate is taken as the verified username and resolved to a
// user ID, which is stored in the request context for downstream handlers.
// Identity verification itself happened during the TLS handshake; this
// middleware trusts it completely.
func CertAuth(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
				http.Error(w, "no client certificate provided", http.StatusUnauthorized)
				return
			}
			username := r.TLS.PeerCertificates[0].Subject.CommonName

			user, err := users.GetByUsername(r.Context(), username)
			if errors.Is(err, errs.ErrNotFound) {
				http.Error(w, "unknown user", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "authentication unavailable", http.StatusBadGateway)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithUserID returns a context carrying the given user ID. Used by tests and
// by alternate authenticators that resolve identity elsewhere.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}
