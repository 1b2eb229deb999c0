package middleware

import (
	"log"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// slowRequestThreshold marks requests worth logging even when they succeed.
const slowRequestThreshold = 5 * time.Second

// RequestTracker logs API requests that fail with a server error or run slowly,
// tagged with the chi request id so they can be matched to access logs.
type RequestTracker struct {
	logf      func(format string, args ...any)
	threshold time.Duration
}

// NewRequestTracker creates a request tracker that writes to the standard logger.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{logf: log.Printf, threshold: slowRequestThreshold}
}

// Middleware returns an HTTP middleware that tracks request outcomes.
func (rt *RequestTracker) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Capture status code and response size
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			elapsed := time.Since(start)
			if rw.statusCode < http.StatusInternalServerError && elapsed < rt.threshold {
				return
			}

			rt.logf("[request] id=%s %s %s status=%d bytes=%d duration=%s",
				chimiddleware.GetReqID(r.Context()),
				r.Method,
				r.URL.Path,
				rw.statusCode,
				rw.size,
				elapsed.Round(time.Millisecond),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}
