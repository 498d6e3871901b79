package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/josh-kwaku/fintrack/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging puts a request-scoped logger in the context and logs one line per
// rate request once it completes. Health probes are not logged.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With("request_id", RequestID(r.Context()))
		r = r.WithContext(logging.WithLogger(r.Context(), logger))
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		q := r.URL.Query()
		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "rates request",
			"path", r.URL.Path,
			"base", q.Get("base"),
			"symbols", q.Get("symbols"),
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
