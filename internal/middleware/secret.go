package middleware

import (
	"crypto/subtle"
	"net/http"
)

const PushSecretHeader = "X-Push-Secret"

// RequireSecret admits callers presenting secret in the X-Push-Secret header.
// An empty secret disables the route.
func RequireSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeEnvelopeError(w, http.StatusNotFound, "NOT_FOUND", "push is disabled")
				return
			}

			given := r.Header.Get(PushSecretHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
				writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid push secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
