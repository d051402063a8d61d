package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPObserver receives one observation per served request. Satisfied by the
// prometheus metrics collector.
type HTTPObserver interface {
	ObserveHTTPRequest(method, path string, statusCode int, duration time.Duration)
}

// MetricsMiddleware records request counts and latencies.
type MetricsMiddleware struct {
	observer HTTPObserver
}

// NewMetricsMiddleware builds the middleware around an observer.
func NewMetricsMiddleware(observer HTTPObserver) *MetricsMiddleware {
	return &MetricsMiddleware{observer: observer}
}

// Handler wraps next with metrics collection. The route pattern is resolved
// after the handler ran so path parameters stay aggregated.
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		m.observer.ObserveHTTPRequest(r.Method, path, ww.Status(), time.Since(start))
	})
}
