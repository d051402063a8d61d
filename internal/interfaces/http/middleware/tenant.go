package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/retailcore/commerce-batch/internal/config"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	"github.com/retailcore/commerce-batch/pkg/types/common"
)

// TenantMiddleware extracts the tenant ID from the configured request header
// and injects it into the request context. Every batch write downstream is
// scoped to that tenant.
type TenantMiddleware struct {
	cfg    config.MultitenancyConfig
	logger logging.Logger
}

// NewTenantMiddleware builds the middleware from the multitenancy config
// section.
func NewTenantMiddleware(cfg config.MultitenancyConfig, log logging.Logger) *TenantMiddleware {
	if cfg.TenantHeader == "" {
		cfg.TenantHeader = config.DefaultTenantHeader
	}
	return &TenantMiddleware{cfg: cfg, logger: log}
}

// Handler resolves the tenant for the request. A missing or malformed tenant
// header is rejected with 400 when tenants are required; otherwise the
// configured default is used, and when no default parses the request passes
// through without a tenant in context.
func (m *TenantMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(m.cfg.TenantHeader)
		if raw == "" {
			raw = m.cfg.DefaultTenantID
		}

		if raw == "" {
			if m.cfg.RequireTenant {
				writeTenantError(w, "missing tenant header "+m.cfg.TenantHeader)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			if m.cfg.RequireTenant {
				writeTenantError(w, "tenant ID must be a UUID")
				return
			}
			m.logger.Warn("Ignoring malformed tenant ID", logging.String("tenant_id", raw))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set(m.cfg.TenantHeader, tenantID.String())
		ctx := context.WithValue(r.Context(), common.ContextKeyTenantID, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeTenantError(w http.ResponseWriter, message string) {
	appErr := apperrors.New(apperrors.ErrCodeMissingTenantID, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":{"code":"` + appErr.Code.String() + `","message":"` + message + `"}}`))
}

// TenantFromContext returns the tenant resolved by the middleware.
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(common.ContextKeyTenantID).(uuid.UUID)
	return id, ok
}
