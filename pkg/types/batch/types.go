// Package batch defines the wire-level types for the batch execution API.
// These types are shared between the server, the Go client, and the CLI; no
// behavior beyond serialization and simple accessors lives here.
package batch

import (
	"time"
)

// BatchState is the lifecycle state of a submitted batch.
type BatchState string

const (
	// StatePending means the batch is validated but execution has not begun.
	StatePending BatchState = "pending"
	// StateRunning means operations are being dispatched.
	StateRunning BatchState = "running"
	// StateCompleted means every operation finished and none failed.
	StateCompleted BatchState = "completed"
	// StateFailed means execution finished with at least one failed operation.
	StateFailed BatchState = "failed"
	// StateCancelled means the batch was cancelled before all operations ran.
	StateCancelled BatchState = "cancelled"
)

// IsTerminal reports whether the state is final. Terminal statuses never
// transition again and become eligible for cleanup.
func (s BatchState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Valid reports whether s is one of the known lifecycle states.
func (s BatchState) Valid() bool {
	switch s {
	case StatePending, StateRunning, StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// BatchOperation is a single unit of work inside a batch request. ID must be
// unique within the request; OperationType selects the handler.
type BatchOperation[T any] struct {
	ID            string `json:"id"`
	OperationType string `json:"operation_type"`
	Data          T      `json:"data"`
}

// BatchOptions carries optional per-request execution overrides. Zero values
// mean "use the server-side configuration".
type BatchOptions struct {
	// ContinueOnError controls whether a failed operation aborts the rest of
	// the batch. Nil means true.
	ContinueOnError *bool `json:"continue_on_error,omitempty"`
	// MaxConcurrency caps parallelism for this request. The effective width
	// is the minimum of this value and the server-wide limit; 0 means no
	// request-level override.
	MaxConcurrency int `json:"max_concurrency,omitempty"`
	// TimeoutSeconds overrides the per-operation timeout; 0 keeps the
	// configured default.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// ContinueOnErrorOrDefault resolves the optional flag, defaulting to true.
func (o BatchOptions) ContinueOnErrorOrDefault() bool {
	if o.ContinueOnError == nil {
		return true
	}
	return *o.ContinueOnError
}

// BatchRequest is the submission payload: the operations to execute plus
// optional execution options.
type BatchRequest[T any] struct {
	Operations []BatchOperation[T] `json:"operations"`
	Options    *BatchOptions       `json:"options,omitempty"`
}

// OptionsOrDefault returns the request options, or the zero value when the
// caller omitted them.
func (r BatchRequest[T]) OptionsOrDefault() BatchOptions {
	if r.Options == nil {
		return BatchOptions{}
	}
	return *r.Options
}

// ErrorDetail is the structured failure attached to an unsuccessful result.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult is the per-operation outcome. Exactly one of Data or Error is
// populated, keyed by Success.
type BatchResult struct {
	ID         string       `json:"id"`
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// BatchSummary aggregates the outcome of a finished batch.
// SuccessfulOperations + FailedOperations always equals TotalOperations.
type BatchSummary struct {
	TotalOperations      int   `json:"total_operations"`
	SuccessfulOperations int   `json:"successful_operations"`
	FailedOperations     int   `json:"failed_operations"`
	TotalDurationMs      int64 `json:"total_duration_ms"`
	AverageDurationMs    int64 `json:"average_duration_ms"`
}

// BatchResponse is the synchronous reply to a batch submission. Results are
// in completion order, not submission order.
type BatchResponse struct {
	BatchID string        `json:"batch_id"`
	Status  BatchState    `json:"status"`
	Results []BatchResult `json:"results"`
	Summary BatchSummary  `json:"summary"`
}

// BatchStatus is a point-in-time snapshot of a batch, queryable during and
// after execution.
type BatchStatus struct {
	BatchID             string     `json:"batch_id"`
	Status              BatchState `json:"status"`
	TotalOperations     int        `json:"total_operations"`
	CompletedOperations int        `json:"completed_operations"`
	FailedOperations    int        `json:"failed_operations"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// Progress reports live completion figures for a running batch.
type Progress struct {
	BatchID        string  `json:"batch_id"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Failed         int     `json:"failed"`
	Percentage     float64 `json:"percentage"`
	ElapsedMs      int64   `json:"elapsed_ms"`
	EstimatedMsETA int64   `json:"estimated_ms_eta"`
}
