package batch

import (
	"context"
	"time"

	"github.com/retailcore/commerce-batch/pkg/types/batch"
)

// Executor runs a single operation of a batch. Implementations dispatch on
// op.OperationType and return either a result payload for the response or an
// error describing the failure. Tenant identity and other request-scoped
// values travel in ctx.
type Executor[T any] interface {
	// Supports reports whether operationType has a handler. The processor
	// fails an unsupported operation without calling Execute; the rest of
	// the batch is unaffected.
	Supports(operationType string) bool

	// Execute runs one operation. The passed context carries the
	// per-operation timeout; implementations must honor cancellation.
	Execute(ctx context.Context, op batch.BatchOperation[T]) (any, error)
}

// ExecutorFunc adapts a function to the Executor interface, accepting every
// operation type. Used mostly in tests.
type ExecutorFunc[T any] func(ctx context.Context, op batch.BatchOperation[T]) (any, error)

func (f ExecutorFunc[T]) Supports(string) bool { return true }

func (f ExecutorFunc[T]) Execute(ctx context.Context, op batch.BatchOperation[T]) (any, error) {
	return f(ctx, op)
}

// Metrics receives execution observations from the processor. The prometheus
// package provides the production implementation.
type Metrics interface {
	// ObserveBatch records one finished batch.
	ObserveBatch(status batch.BatchState, size int, duration time.Duration)
	// ObserveOperation records one finished operation.
	ObserveOperation(operationType string, success bool, duration time.Duration)
	// SetOperationsInFlight tracks the gate occupancy.
	SetOperationsInFlight(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveBatch(batch.BatchState, int, time.Duration) {}
func (noopMetrics) ObserveOperation(string, bool, time.Duration)      {}
func (noopMetrics) SetOperationsInFlight(int)                         {}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }
