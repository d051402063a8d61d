package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/retailcore/commerce-batch/internal/batch"
	domainProduct "github.com/retailcore/commerce-batch/internal/domain/product"
	"github.com/retailcore/commerce-batch/internal/infrastructure/messaging/kafka"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/middleware"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
)

// defaultMaxBodySize caps request bodies when the config leaves it unset.
const defaultMaxBodySize = 10 << 20 // 10 MiB

// BatchEventPublisher publishes batch lifecycle events. Satisfied by the
// Kafka producer.
type BatchEventPublisher interface {
	PublishEvent(ctx context.Context, eventType, tenantID string, payload interface{}) error
}

// BatchHandler serves the product batch endpoints. Submission is
// synchronous: the response carries the full per-operation results.
type BatchHandler struct {
	processor   *batch.Processor[domainProduct.BatchData]
	publisher   BatchEventPublisher
	maxBodySize int64
	logger      logging.Logger
}

// BatchHandlerOption configures the BatchHandler.
type BatchHandlerOption func(*BatchHandler)

// WithEventPublisher attaches a publisher for batch.completed events.
func WithEventPublisher(p BatchEventPublisher) BatchHandlerOption {
	return func(h *BatchHandler) { h.publisher = p }
}

// NewBatchHandler builds the handler. maxBodySize <= 0 falls back to the
// default cap.
func NewBatchHandler(p *batch.Processor[domainProduct.BatchData], maxBodySize int64, log logging.Logger, opts ...BatchHandlerOption) *BatchHandler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	h := &BatchHandler{processor: p, maxBodySize: maxBodySize, logger: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Submit handles POST /api/v1/batch/products.
func (h *BatchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req batchtypes.BatchRequest[domainProduct.BatchData]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, apperrors.ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.processor.Submit(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	h.publishCompleted(r.Context(), resp)
	writeJSON(w, http.StatusOK, resp)
}

// publishCompleted emits a batch.completed event once a submission has run to
// a terminal state. A publish failure is logged and never surfaces to the
// caller.
func (h *BatchHandler) publishCompleted(ctx context.Context, resp *batchtypes.BatchResponse) {
	if h.publisher == nil {
		return
	}
	tenantID := ""
	if id, ok := middleware.TenantFromContext(ctx); ok {
		tenantID = id.String()
	}
	payload := kafka.BatchCompletedPayload{
		BatchID:     resp.BatchID,
		Status:      string(resp.Status),
		Total:       resp.Summary.TotalOperations,
		Succeeded:   resp.Summary.SuccessfulOperations,
		Failed:      resp.Summary.FailedOperations,
		DurationMs:  resp.Summary.TotalDurationMs,
		CompletedAt: time.Now().UTC(),
	}
	if err := h.publisher.PublishEvent(ctx, kafka.TopicBatchCompleted, tenantID, payload); err != nil {
		h.logger.Warn("Failed to publish batch completion event",
			logging.String("batch_id", resp.BatchID),
			logging.Err(err))
	}
}

// Status handles GET /api/v1/batch/{batchID}.
func (h *BatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	status, err := h.processor.Status(batchID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Progress handles GET /api/v1/batch/{batchID}/progress.
func (h *BatchHandler) Progress(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	progress, err := h.processor.Progress(batchID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// CancelResponse is the body returned by Cancel.
type CancelResponse struct {
	BatchID   string `json:"batch_id"`
	Cancelled bool   `json:"cancelled"`
}

// Cancel handles DELETE /api/v1/batch/{batchID}. Cancellation is advisory:
// operations already in flight finish, and Cancelled is false when the batch
// had already reached a terminal state.
func (h *BatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	cancelled, err := h.processor.Cancel(batchID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{BatchID: batchID, Cancelled: cancelled})
}
