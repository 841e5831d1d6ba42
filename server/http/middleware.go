package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestLogger tags each request with an id and logs method, path, and
// duration once the handler returns.
func RequestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		w.Header().Set("X-Request-Id", requestID)

		h.ServeHTTP(w, r)

		slog.InfoContext(
			r.Context(),
			"handled request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}
