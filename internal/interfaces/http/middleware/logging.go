package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
)

// LoggingMiddleware logs one line per served request.
type LoggingMiddleware struct {
	logger        logging.Logger
	skipPaths     map[string]struct{}
	slowThreshold time.Duration
}

// NewLoggingMiddleware builds the middleware. skipPaths are matched exactly
// against the request path; health and metrics probes belong there.
func NewLoggingMiddleware(log logging.Logger, skipPaths ...string) *LoggingMiddleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return &LoggingMiddleware{
		logger:        log,
		skipPaths:     skip,
		slowThreshold: 3 * time.Second,
	}
}

// Handler wraps next with request logging. 5xx responses log at error level,
// 4xx and slow requests at warn.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skipPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		fields := []logging.Field{
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int64("duration_ms", elapsed.Milliseconds()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.String("request_id", chimw.GetReqID(r.Context())),
		}

		switch {
		case ww.Status() >= 500:
			m.logger.Error("Request failed", fields...)
		case ww.Status() >= 400:
			m.logger.Warn("Request rejected", fields...)
		case elapsed > m.slowThreshold:
			m.logger.Warn("Slow request", fields...)
		default:
			m.logger.Info("Request served", fields...)
		}
	})
}
