package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/commerce-batch/internal/config"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
)

func tenantHandler(t *testing.T, captured *uuid.UUID, found *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := TenantFromContext(r.Context())
		*captured = id
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestTenantMiddleware_ValidHeader(t *testing.T) {
	tenantID := uuid.New()
	var captured uuid.UUID
	var found bool

	m := NewTenantMiddleware(config.MultitenancyConfig{RequireTenant: true}, logging.NewNopLogger())
	srv := m.Handler(tenantHandler(t, &captured, &found))

	req := httptest.NewRequest("POST", "/api/v1/batch/products", nil)
	req.Header.Set(config.DefaultTenantHeader, tenantID.String())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, tenantID, captured)
	assert.Equal(t, tenantID.String(), rec.Header().Get(config.DefaultTenantHeader))
}

func TestTenantMiddleware_MissingRequired(t *testing.T) {
	var captured uuid.UUID
	var found bool

	m := NewTenantMiddleware(config.MultitenancyConfig{RequireTenant: true}, logging.NewNopLogger())
	srv := m.Handler(tenantHandler(t, &captured, &found))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/batch/products", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_TENANT_ID")
	assert.False(t, found)
}

func TestTenantMiddleware_MalformedRequired(t *testing.T) {
	var captured uuid.UUID
	var found bool

	m := NewTenantMiddleware(config.MultitenancyConfig{RequireTenant: true}, logging.NewNopLogger())
	srv := m.Handler(tenantHandler(t, &captured, &found))

	req := httptest.NewRequest("POST", "/api/v1/batch/products", nil)
	req.Header.Set(config.DefaultTenantHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, found)
}

func TestTenantMiddleware_OptionalFallsThrough(t *testing.T) {
	var captured uuid.UUID
	var found bool

	m := NewTenantMiddleware(config.MultitenancyConfig{RequireTenant: false}, logging.NewNopLogger())
	srv := m.Handler(tenantHandler(t, &captured, &found))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/batch/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, found)
}

func TestTenantMiddleware_DefaultTenant(t *testing.T) {
	defaultID := uuid.New()
	var captured uuid.UUID
	var found bool

	m := NewTenantMiddleware(config.MultitenancyConfig{
		RequireTenant:   true,
		DefaultTenantID: defaultID.String(),
	}, logging.NewNopLogger())
	srv := m.Handler(tenantHandler(t, &captured, &found))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/batch/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, defaultID, captured)
}

func TestTenantMiddleware_CustomHeaderName(t *testing.T) {
	tenantID := uuid.New()
	var captured uuid.UUID
	var found bool

	m := NewTenantMiddleware(config.MultitenancyConfig{
		TenantHeader:  "X-Org-ID",
		RequireTenant: true,
	}, logging.NewNopLogger())
	srv := m.Handler(tenantHandler(t, &captured, &found))

	req := httptest.NewRequest("POST", "/api/v1/batch/products", nil)
	req.Header.Set("X-Org-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tenantID, captured)
}
