package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/blog-platform/internal/auth"
)

type key string

const identityKey key = "identity"

// Auth validates the bearer token on every protected route and injects the
// resolved identity into the request context. Missing, invalid, and expired
// tokens each get their own 401 message; no business logic runs after a
// failed check.
func Auth(gateway *auth.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if h := r.Header.Get("Authorization"); h != "" {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}

			identity, err := gateway.Validate(tokenStr)
			if err != nil {
				msg := "invalid token"
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					msg = "missing authorization header"
				case errors.Is(err, auth.ErrExpiredToken):
					msg = "token expired"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": msg})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a context carrying the identity, as Auth would set it.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by Auth, if any.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
