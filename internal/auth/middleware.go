package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the
// username stored in a request context.
type contextKey string

const usernameKey contextKey = "username"

// OptionalAuth reads "Authorization: Bearer <jwt>" when present and, if the
// token is valid, stores its username in the request context. Requests
// without a token, or with a bad one, continue anonymously.
//
// The development API mirrors the remote API here: writes are not rejected
// for lacking a token. Handlers use the username only for logging.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := bearerToken(r); ok {
				if username, err := tokens.Validate(raw); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), usernameKey, username))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UsernameFromContext returns the username of a request that carried a valid
// bearer token, or ("", false).
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok && name != ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
