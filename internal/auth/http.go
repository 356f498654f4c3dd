// ABOUTME: HTTP middleware for Basic authentication on API endpoints
// ABOUTME: The username slot carries either a signed token or a real username

package auth

import (
	"errors"
	"log/slog"
	"net/http"
)

// realm is sent in the WWW-Authenticate challenge on rejection.
const realm = "splitledger"

// RequireAuth creates an HTTP middleware that authenticates requests via
// HTTP Basic credentials. The Basic "username" slot may hold either a token
// issued by the gateway's codec or a real username; the "password" slot is
// ignored when a token is supplied.
//
// On success the principal is attached to the request context; on any
// failure the request is rejected with 401 and a Basic challenge.
func RequireAuth(gateway *Gateway) func(http.Handler) http.Handler {
	logger := slog.Default().With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier, secret, ok := r.BasicAuth()
			if !ok {
				challenge(w)
				return
			}

			user, err := gateway.Authenticate(r.Context(), identifier, secret)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					// Persistence faults are not an auth decision
					logger.Error("authentication lookup failed", "error", err)
					http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
					return
				}
				challenge(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// challenge writes a 401 with a Basic auth challenge.
func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	http.Error(w, `{"error":"unauthenticated"}`, http.StatusUnauthorized)
}
