// Package http assembles the HTTP surface of the batch service: the chi
// route tree, middleware stack, and the server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/handlers"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware the route tree needs.
type RouterConfig struct {
	BatchHandler  *handlers.BatchHandler
	HealthHandler *handlers.HealthHandler

	TenantMiddleware  *middleware.TenantMiddleware
	LoggingMiddleware *middleware.LoggingMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler

	Logger logging.Logger
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.TenantMiddleware != nil {
			api.Use(cfg.TenantMiddleware.Handler)
		}
		registerBatchRoutes(api, cfg.BatchHandler)
	})

	return r
}

// registerBatchRoutes mounts the batch endpoints under /batch.
func registerBatchRoutes(r chi.Router, h *handlers.BatchHandler) {
	if h == nil {
		return
	}
	r.Route("/batch", func(br chi.Router) {
		br.Post("/products", h.Submit)
		br.Get("/{batchID}", h.Status)
		br.Get("/{batchID}/progress", h.Progress)
		br.Delete("/{batchID}", h.Cancel)
	})
}
