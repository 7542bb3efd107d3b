package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// DownloadTimeout bounds file responses (asset bundles, spreadsheet exports)
// without buffering them the way http.TimeoutHandler does. The whole transfer
// gets maxDuration; a gap of idle between writes aborts it.
func DownloadTimeout(maxDuration, idle time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), maxDuration)
			defer cancel()

			rc := http.NewResponseController(w)
			_ = rc.SetWriteDeadline(time.Now().Add(maxDuration))

			dw := &downloadWriter{ResponseWriter: w, rc: rc, idle: idle, cancel: cancel}
			dw.touch()
			defer dw.stop()

			next.ServeHTTP(dw, r.WithContext(ctx))
		})
	}
}

type downloadWriter struct {
	http.ResponseWriter
	rc     *http.ResponseController
	idle   time.Duration
	cancel context.CancelFunc

	mu    sync.Mutex
	timer *time.Timer
}

func (dw *downloadWriter) touch() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.timer != nil {
		dw.timer.Reset(dw.idle)
		return
	}
	dw.timer = time.AfterFunc(dw.idle, func() {
		_ = dw.rc.SetWriteDeadline(time.Now())
		dw.cancel()
	})
}

func (dw *downloadWriter) stop() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.timer != nil {
		dw.timer.Stop()
	}
}

func (dw *downloadWriter) Write(b []byte) (int, error) {
	dw.touch()
	return dw.ResponseWriter.Write(b)
}

func (dw *downloadWriter) Unwrap() http.ResponseWriter {
	return dw.ResponseWriter
}

func (dw *downloadWriter) Flush() {
	if f, ok := dw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
