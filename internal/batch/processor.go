// Package batch implements the generic batch execution engine: synchronous
// submission with bounded concurrency, per-operation timeouts and retries,
// live progress tracking, and an in-memory status registry with advisory
// cancellation.
package batch

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/commerce-batch/internal/config"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	"github.com/retailcore/commerce-batch/pkg/types/batch"
)

// backoffCapMultiplier bounds the exponential backoff at RetryDelay times
// this factor.
const backoffCapMultiplier = 16

// Processor executes batches of operations through an Executor. A single
// Processor is shared by every request; its Gate bounds concurrency across
// all batches and its Registry keeps their statuses queryable.
type Processor[T any] struct {
	cfg      config.BatchConfig
	exec     Executor[T]
	gate     *Gate
	registry *Registry
	logger   logging.Logger
	metrics  Metrics
}

// Option configures a Processor.
type Option[T any] func(*Processor[T])

// WithLogger injects a logger.
func WithLogger[T any](l logging.Logger) Option[T] {
	return func(p *Processor[T]) { p.logger = l }
}

// WithMetrics injects a metrics collector.
func WithMetrics[T any](m Metrics) Option[T] {
	return func(p *Processor[T]) { p.metrics = m }
}

// WithGate substitutes the concurrency gate, letting several processors
// share one permit pool.
func WithGate[T any](g *Gate) Option[T] {
	return func(p *Processor[T]) { p.gate = g }
}

// WithRegistry substitutes the status registry.
func WithRegistry[T any](r *Registry) Option[T] {
	return func(p *Processor[T]) { p.registry = r }
}

// NewProcessor builds a Processor from the batch configuration and an
// executor for the domain's operations.
func NewProcessor[T any](cfg config.BatchConfig, exec Executor[T], opts ...Option[T]) *Processor[T] {
	p := &Processor[T]{
		cfg:      cfg,
		exec:     exec,
		gate:     NewGate(cfg.MaxConcurrency),
		registry: NewRegistry(),
		logger:   logging.NewNopLogger(),
		metrics:  NewNoopMetrics(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Registry exposes the processor's status registry, mainly for wiring the
// HTTP layer and the cleanup loop.
func (p *Processor[T]) Registry() *Registry {
	return p.registry
}

// Submit validates and executes the batch, blocking until every operation
// has either finished or been dropped by cancellation, abort, or the batch
// timeout. Results are in completion order. A validation failure returns an
// error and leaves no trace in the registry.
func (p *Processor[T]) Submit(ctx context.Context, req batch.BatchRequest[T]) (*batch.BatchResponse, error) {
	if err := validateRequest(req, p.cfg.MaxBatchSize); err != nil {
		return nil, err
	}

	opts := req.OptionsOrDefault()
	n := len(req.Operations)
	batchID := uuid.New().String()

	tracker, cancelCh := p.registry.Register(batchID, n)
	p.registry.MarkRunning(batchID)

	opTimeout := p.cfg.OperationTimeout
	if opts.TimeoutSeconds > 0 {
		opTimeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}
	continueOnError := opts.ContinueOnErrorOrDefault()

	batchCtx, cancel := context.WithTimeout(ctx, p.cfg.BatchTimeout)
	defer cancel()

	// The dispatch context additionally dies when the batch is cancelled, so
	// a gate acquisition never outlives a cancellation request.
	dispatchCtx, stopDispatch := context.WithCancel(batchCtx)
	defer stopDispatch()
	go func() {
		select {
		case <-cancelCh:
			stopDispatch()
		case <-dispatchCtx.Done():
		}
	}()

	// Optional per-request width on top of the shared gate. The effective
	// concurrency is the minimum of the request override and the gate size.
	var local chan struct{}
	if opts.MaxConcurrency > 0 && opts.MaxConcurrency < p.gate.Capacity() {
		local = make(chan struct{}, opts.MaxConcurrency)
	}

	p.logger.Info("batch accepted",
		logging.String("batch_id", batchID),
		logging.Int("operations", n),
		logging.Int("max_concurrency", p.gate.Capacity()),
		logging.Bool("continue_on_error", continueOnError),
	)

	start := time.Now()
	resultCh := make(chan batch.BatchResult, n)
	var wg sync.WaitGroup
	var aborted atomic.Bool

	skip := func(opID string) {
		tracker.RecordFailure()
		resultCh <- p.droppedResult(opID, cancelCh, batchCtx)
	}

	for _, op := range req.Operations {
		if aborted.Load() {
			skip(op.ID)
			continue
		}
		select {
		case <-dispatchCtx.Done():
			skip(op.ID)
			continue
		default:
		}

		if local != nil {
			select {
			case local <- struct{}{}:
			case <-dispatchCtx.Done():
				skip(op.ID)
				continue
			}
		}
		if err := p.gate.Acquire(dispatchCtx); err != nil {
			if local != nil {
				<-local
			}
			skip(op.ID)
			continue
		}

		wg.Add(1)
		p.metrics.SetOperationsInFlight(p.gate.InFlight())
		go func(op batch.BatchOperation[T]) {
			defer wg.Done()
			defer func() {
				p.gate.Release()
				p.metrics.SetOperationsInFlight(p.gate.InFlight())
				if local != nil {
					<-local
				}
			}()

			res := p.runOperation(batchCtx, op, opTimeout)
			if res.Success {
				tracker.RecordSuccess()
			} else {
				tracker.RecordFailure()
				if !continueOnError {
					aborted.Store(true)
				}
			}
			resultCh <- res
		}(op)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]batch.BatchResult, 0, n)
	failed := 0
	for res := range resultCh {
		if !res.Success {
			failed++
		}
		results = append(results, res)
	}

	duration := time.Since(start)

	state := batch.StateCompleted
	if failed > 0 {
		state = batch.StateFailed
	}
	p.registry.Finalize(batchID, state)

	// A cancellation that raced Finalize wins; report the registry's word.
	status, err := p.registry.Status(batchID)
	if err == nil {
		state = status.Status
	}

	p.metrics.ObserveBatch(state, n, duration)
	p.logger.Info("batch finished",
		logging.String("batch_id", batchID),
		logging.String("status", string(state)),
		logging.Int("succeeded", n-failed),
		logging.Int("failed", failed),
		logging.Duration("duration", duration),
	)

	var avgMs int64
	if n > 0 {
		avgMs = duration.Milliseconds() / int64(n)
	}

	return &batch.BatchResponse{
		BatchID: batchID,
		Status:  state,
		Results: results,
		Summary: batch.BatchSummary{
			TotalOperations:      n,
			SuccessfulOperations: n - failed,
			FailedOperations:     failed,
			TotalDurationMs:      duration.Milliseconds(),
			AverageDurationMs:    avgMs,
		},
	}, nil
}

// Status returns the current status of a batch.
func (p *Processor[T]) Status(batchID string) (batch.BatchStatus, error) {
	return p.registry.Status(batchID)
}

// Progress returns live completion figures for a batch.
func (p *Processor[T]) Progress(batchID string) (batch.Progress, error) {
	return p.registry.Progress(batchID)
}

// Cancel requests cancellation of a running batch. Operations already in
// flight run to completion; undispatched ones are dropped. The returned bool
// reports whether the batch transitioned to cancelled.
func (p *Processor[T]) Cancel(batchID string) (bool, error) {
	cancelled, err := p.registry.Cancel(batchID)
	if err == nil && cancelled {
		p.logger.Info("batch cancelled", logging.String("batch_id", batchID))
	}
	return cancelled, err
}

// Cleanup removes terminal batch statuses older than the configured
// retention and returns how many were removed.
func (p *Processor[T]) Cleanup() int {
	return p.registry.Cleanup(p.cfg.StatusRetention)
}

// RunCleanup sweeps the registry on the configured interval until ctx is
// done. Run it in its own goroutine.
func (p *Processor[T]) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := p.Cleanup(); removed > 0 {
				p.logger.Debug("batch statuses cleaned up", logging.Int("removed", removed))
			}
		}
	}
}

// runOperation executes one operation with the per-operation timeout and,
// when enabled, retries with exponential backoff. Client-side errors such as
// validation failures are never retried.
func (p *Processor[T]) runOperation(batchCtx context.Context, op batch.BatchOperation[T], opTimeout time.Duration) batch.BatchResult {
	start := time.Now()

	if !p.exec.Supports(op.OperationType) {
		err := apperrors.Newf(apperrors.ErrCodeUnsupportedOperation,
			"unsupported operation type %q", op.OperationType)
		p.metrics.ObserveOperation(op.OperationType, false, time.Since(start))
		p.logger.Warn("operation failed",
			logging.String("operation_id", op.ID),
			logging.String("operation_type", op.OperationType),
			logging.Err(err),
		)
		return batch.BatchResult{
			ID:      op.ID,
			Success: false,
			Error:   errorDetail(err),
		}
	}

	maxAttempts := 1
	if p.cfg.EnableRetry && p.cfg.MaxRetries > 0 {
		maxAttempts = 1 + p.cfg.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt-1, p.cfg.RetryDelay)
			select {
			case <-batchCtx.Done():
				lastErr = batchCtx.Err()
				attempt = maxAttempts
				continue
			case <-time.After(delay):
			}
			p.logger.Debug("retrying operation",
				logging.String("operation_id", op.ID),
				logging.Int("attempt", attempt+1),
			)
		}

		opCtx, cancel := context.WithTimeout(batchCtx, opTimeout)
		data, err := p.exec.Execute(opCtx, op)
		cancel()

		if err == nil {
			elapsed := time.Since(start)
			p.metrics.ObserveOperation(op.OperationType, true, elapsed)
			return batch.BatchResult{
				ID:         op.ID,
				Success:    true,
				Data:       data,
				DurationMs: elapsed.Milliseconds(),
			}
		}

		lastErr = err
		if attempt < maxAttempts-1 && retryable(err) {
			continue
		}
		break
	}

	elapsed := time.Since(start)
	p.metrics.ObserveOperation(op.OperationType, false, elapsed)
	p.logger.Warn("operation failed",
		logging.String("operation_id", op.ID),
		logging.String("operation_type", op.OperationType),
		logging.Err(lastErr),
	)

	return batch.BatchResult{
		ID:         op.ID,
		Success:    false,
		Error:      errorDetail(lastErr),
		DurationMs: elapsed.Milliseconds(),
	}
}

// droppedResult builds the failure reported for an operation that never ran
// because the batch was cancelled, aborted, or timed out.
func (p *Processor[T]) droppedResult(opID string, cancelCh <-chan struct{}, batchCtx context.Context) batch.BatchResult {
	code := apperrors.ErrCodeBatchAborted
	message := "batch aborted before this operation was dispatched"

	select {
	case <-cancelCh:
		message = "batch cancelled before this operation was dispatched"
	default:
		if stderrors.Is(batchCtx.Err(), context.DeadlineExceeded) {
			code = apperrors.ErrCodeTimeout
			message = "batch timed out before this operation was dispatched"
		}
	}

	return batch.BatchResult{
		ID:      opID,
		Success: false,
		Error:   &batch.ErrorDetail{Code: string(code), Message: message},
	}
}

// errorDetail converts an execution error into the wire-level detail.
func errorDetail(err error) *batch.ErrorDetail {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return &batch.ErrorDetail{
			Code:    string(apperrors.ErrCodeTimeout),
			Message: "operation timed out",
		}
	}

	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return &batch.ErrorDetail{Code: string(appErr.Code), Message: appErr.Message}
	}
	return &batch.ErrorDetail{
		Code:    string(apperrors.ErrCodeProcessingFailed),
		Message: err.Error(),
	}
}

// retryable reports whether err is worth another attempt. Context errors and
// client-side failures (validation, not-found, conflicts) are final.
func retryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return !apperrors.IsClientError(appErr.Code)
	}
	return true
}

// backoff returns the delay before the attempt-th retry: exponential with
// base RetryDelay, capped, with ±25% jitter.
func backoff(attempt int, initial time.Duration) time.Duration {
	if initial <= 0 {
		return 0
	}
	base := float64(initial) * math.Pow(2.0, float64(attempt))
	if limit := float64(initial) * backoffCapMultiplier; base > limit {
		base = limit
	}
	jitter := base * 0.25 * (rand.Float64()*2 - 1)
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}
