package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthChecker is a probe into one dependency. The postgres connection and
// redis client both satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	checks map[string]HealthChecker
	logger logging.Logger
}

// NewHealthHandler builds an empty handler; register dependencies with
// Register.
func NewHealthHandler(log logging.Logger) *HealthHandler {
	return &HealthHandler{
		checks: make(map[string]HealthChecker),
		logger: log,
	}
}

// Register adds a named dependency probe to the readiness check.
func (h *HealthHandler) Register(name string, c HealthChecker) {
	h.checks[name] = c
}

// Liveness handles GET /healthz. It reports the process is up, nothing more.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz. It probes every registered dependency and
// returns 503 when any fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := check.HealthCheck(ctx)
		cancel()

		if err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			h.logger.Warn("Readiness check failed",
				logging.String("dependency", name),
				logging.Err(err))
			continue
		}
		results[name] = "ok"
	}

	writeJSON(w, status, map[string]interface{}{
		"status": http.StatusText(status),
		"checks": results,
	})
}
