package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/commerce-batch/internal/batch"
	"github.com/retailcore/commerce-batch/internal/config"
	domainProduct "github.com/retailcore/commerce-batch/internal/domain/product"
	"github.com/retailcore/commerce-batch/internal/infrastructure/messaging/kafka"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apphttp "github.com/retailcore/commerce-batch/internal/interfaces/http"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/handlers"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/middleware"
	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
)

// stubExecutor accepts the product operation types and returns a fixed
// payload.
type stubExecutor struct {
	execFunc func(ctx context.Context, op batchtypes.BatchOperation[domainProduct.BatchData]) (any, error)
}

func (s *stubExecutor) Supports(operationType string) bool {
	for _, op := range domainProduct.SupportedOperations {
		if op == operationType {
			return true
		}
	}
	return false
}

func (s *stubExecutor) Execute(ctx context.Context, op batchtypes.BatchOperation[domainProduct.BatchData]) (any, error) {
	if s.execFunc != nil {
		return s.execFunc(ctx, op)
	}
	return map[string]interface{}{"ok": true}, nil
}

func testBatchConfig() config.BatchConfig {
	return config.BatchConfig{
		MaxBatchSize:     100,
		MaxConcurrency:   4,
		OperationTimeout: time.Second,
		BatchTimeout:     5 * time.Second,
		StatusRetention:  time.Hour,
		CleanupInterval:  time.Minute,
	}
}

func newTestRouter(t *testing.T, exec batch.Executor[domainProduct.BatchData]) http.Handler {
	t.Helper()
	log := logging.NewNopLogger()
	proc := batch.NewProcessor[domainProduct.BatchData](testBatchConfig(), exec, batch.WithLogger[domainProduct.BatchData](log))

	return apphttp.NewRouter(apphttp.RouterConfig{
		BatchHandler:     handlers.NewBatchHandler(proc, 0, log),
		HealthHandler:    handlers.NewHealthHandler(log),
		TenantMiddleware: middleware.NewTenantMiddleware(config.MultitenancyConfig{RequireTenant: true}, log),
		Logger:           log,
	})
}

func submitBody(t *testing.T, n int) string {
	t.Helper()
	ops := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, map[string]interface{}{
			"id":             uuid.New().String(),
			"operation_type": "create",
			"data": map[string]interface{}{
				"sku":  "SKU-" + uuid.New().String()[:8],
				"name": "Widget",
			},
		})
	}
	body, err := json.Marshal(map[string]interface{}{"operations": ops})
	require.NoError(t, err)
	return string(body)
}

func doRequest(router http.Handler, method, path, body string, tenant bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if tenant {
		req.Header.Set(config.DefaultTenantHeader, uuid.New().String())
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmit_Success(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", submitBody(t, 3), true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchtypes.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, batchtypes.StateCompleted, resp.Status)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.Summary.TotalOperations)
	assert.Equal(t, 3, resp.Summary.SuccessfulOperations)
	assert.Zero(t, resp.Summary.FailedOperations)
}

type stubPublisher struct {
	eventType string
	tenantID  string
	payloads  []interface{}
}

func (s *stubPublisher) PublishEvent(_ context.Context, eventType, tenantID string, payload interface{}) error {
	s.eventType = eventType
	s.tenantID = tenantID
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestSubmit_PublishesCompletionEvent(t *testing.T) {
	log := logging.NewNopLogger()
	proc := batch.NewProcessor[domainProduct.BatchData](testBatchConfig(), &stubExecutor{}, batch.WithLogger[domainProduct.BatchData](log))
	pub := &stubPublisher{}
	router := apphttp.NewRouter(apphttp.RouterConfig{
		BatchHandler:     handlers.NewBatchHandler(proc, 0, log, handlers.WithEventPublisher(pub)),
		HealthHandler:    handlers.NewHealthHandler(log),
		TenantMiddleware: middleware.NewTenantMiddleware(config.MultitenancyConfig{RequireTenant: true}, log),
		Logger:           log,
	})

	rec := doRequest(router, "POST", "/api/v1/batch/products", submitBody(t, 2), true)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "batch.completed", pub.eventType)
	assert.NotEmpty(t, pub.tenantID)
	payload, ok := pub.payloads[0].(kafka.BatchCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Total)
	assert.Equal(t, 2, payload.Succeeded)
	assert.Equal(t, string(batchtypes.StateCompleted), payload.Status)
}

func TestSubmit_EmptyBatch(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", `{"operations":[]}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_BATCH")
}

func TestSubmit_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", `{"operations":`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestSubmit_MissingTenant(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", submitBody(t, 1), false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_TENANT_ID")
}

func TestSubmit_UnsupportedOperationFailsOnlyThatOperation(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	body := `{"operations":[` +
		`{"id":"op-1","operation_type":"archive","data":{}},` +
		`{"id":"op-2","operation_type":"create","data":{"sku":"SKU-2","name":"Widget"}},` +
		`{"id":"op-3","operation_type":"update","data":{"id":"` + uuid.New().String() + `"}}]}`
	rec := doRequest(router, "POST", "/api/v1/batch/products", body, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchtypes.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, batchtypes.StateFailed, resp.Status)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 2, resp.Summary.SuccessfulOperations)
	assert.Equal(t, 1, resp.Summary.FailedOperations)
	for _, r := range resp.Results {
		if r.ID == "op-1" {
			assert.False(t, r.Success)
			require.NotNil(t, r.Error)
			assert.Equal(t, "UNSUPPORTED_OPERATION", r.Error.Code)
		} else {
			assert.True(t, r.Success)
		}
	}
}

func TestStatus_AfterCompletion(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", submitBody(t, 2), true)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchtypes.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doRequest(router, "GET", "/api/v1/batch/"+resp.BatchID, "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var status batchtypes.BatchStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, resp.BatchID, status.BatchID)
	assert.Equal(t, batchtypes.StateCompleted, status.Status)
	assert.Equal(t, 2, status.TotalOperations)
	assert.NotNil(t, status.CompletedAt)
}

func TestStatus_NotFound(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "GET", "/api/v1/batch/"+uuid.New().String(), "", true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "BATCH_NOT_FOUND")
}

func TestProgress_AfterCompletion(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", submitBody(t, 2), true)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchtypes.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doRequest(router, "GET", "/api/v1/batch/"+resp.BatchID+"/progress", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var progress batchtypes.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 2, progress.Total)
	assert.Equal(t, float64(100), progress.Percentage)
}

func TestCancel_TerminalBatchReportsFalse(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "POST", "/api/v1/batch/products", submitBody(t, 1), true)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchtypes.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doRequest(router, "DELETE", "/api/v1/batch/"+resp.BatchID, "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var cancel handlers.CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancel))
	assert.Equal(t, resp.BatchID, cancel.BatchID)
	assert.False(t, cancel.Cancelled)
}

func TestCancel_NotFound(t *testing.T) {
	router := newTestRouter(t, &stubExecutor{})

	rec := doRequest(router, "DELETE", "/api/v1/batch/"+uuid.New().String(), "", true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "BATCH_NOT_FOUND")
}
