package middleware

import (
	"net/http"
	"time"
)

const (
	timeoutJSON = `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request timed out"}}`
	timeoutHTML = `<!doctype html><title>Timed out</title><p>The request took too long. Please try again.</p>`
)

// Timeout bounds buffered handlers. Streaming routes use DownloadTimeout and /ws
// must not be wrapped: http.TimeoutHandler does not support hijacking.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return func(next http.Handler) http.Handler {
		api := http.TimeoutHandler(next, timeout, timeoutJSON)
		page := http.TimeoutHandler(next, timeout, timeoutHTML)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wantsJSON(r) {
				api.ServeHTTP(w, r)
				return
			}
			page.ServeHTTP(w, r)
		})
	}
}
