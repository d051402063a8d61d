package batch

import (
	"sync"
	"time"

	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	"github.com/retailcore/commerce-batch/pkg/types/batch"
)

// entry is the registry's view of one batch. The state fields are guarded by
// the registry mutex; finished-operation counts live in the tracker's atomics.
type entry struct {
	state       batch.BatchState
	startedAt   time.Time
	completedAt *time.Time
	tracker     *Tracker

	cancelOnce sync.Once
	cancelCh   chan struct{}
}

// Registry keeps the status of every known batch, live and terminal, until
// cleanup removes it. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	batches map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{batches: make(map[string]*entry)}
}

// Register inserts a new batch in the pending state and returns its tracker
// together with a channel that is closed if the batch gets cancelled.
func (r *Registry) Register(batchID string, total int) (*Tracker, <-chan struct{}) {
	tracker := NewTracker(total)
	e := &entry{
		state:     batch.StatePending,
		startedAt: tracker.StartedAt(),
		tracker:   tracker,
		cancelCh:  make(chan struct{}),
	}

	r.mu.Lock()
	r.batches[batchID] = e
	r.mu.Unlock()

	return tracker, e.cancelCh
}

// MarkRunning transitions a pending batch to running. Terminal states are
// never overwritten, so a batch cancelled between Register and MarkRunning
// stays cancelled.
func (r *Registry) MarkRunning(batchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.batches[batchID]
	if !ok || e.state != batch.StatePending {
		return
	}
	e.state = batch.StateRunning
}

// Finalize moves a batch to the given terminal state and stamps its
// completion time. It is a no-op when the batch is unknown or already
// terminal, which preserves a cancellation that won the race.
func (r *Registry) Finalize(batchID string, state batch.BatchState) {
	if !state.IsTerminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.batches[batchID]
	if !ok || e.state.IsTerminal() {
		return
	}
	now := time.Now()
	e.state = state
	e.completedAt = &now
}

// Cancel requests cancellation of a batch. Operations already dispatched run
// to completion; undispatched ones are dropped by the processor when it
// observes the closed cancel channel. The returned bool reports whether this
// call transitioned the batch; cancelling an already-terminal batch returns
// false with no error.
func (r *Registry) Cancel(batchID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.batches[batchID]
	if !ok {
		return false, apperrors.FromCode(apperrors.ErrCodeBatchNotFound)
	}
	if e.state.IsTerminal() {
		return false, nil
	}

	now := time.Now()
	e.state = batch.StateCancelled
	e.completedAt = &now
	e.cancelOnce.Do(func() { close(e.cancelCh) })
	return true, nil
}

// Status returns a point-in-time snapshot of the batch.
func (r *Registry) Status(batchID string) (batch.BatchStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.batches[batchID]
	if !ok {
		return batch.BatchStatus{}, apperrors.FromCode(apperrors.ErrCodeBatchNotFound)
	}

	// CompletedOperations counts every finished operation regardless of
	// outcome, so FailedOperations can never exceed it.
	st := batch.BatchStatus{
		BatchID:             batchID,
		Status:              e.state,
		TotalOperations:     e.tracker.Total(),
		CompletedOperations: e.tracker.Done(),
		FailedOperations:    e.tracker.Failed(),
		StartedAt:           e.startedAt,
	}
	if e.completedAt != nil {
		// Copy so callers cannot mutate registry state.
		t := *e.completedAt
		st.CompletedAt = &t
	}
	return st, nil
}

// Progress returns live completion figures for the batch.
func (r *Registry) Progress(batchID string) (batch.Progress, error) {
	r.mu.RLock()
	e, ok := r.batches[batchID]
	r.mu.RUnlock()

	if !ok {
		return batch.Progress{}, apperrors.FromCode(apperrors.ErrCodeBatchNotFound)
	}
	return e.tracker.Snapshot(batchID), nil
}

// Cleanup removes terminal batches that started more than maxAge ago and
// returns how many were removed. Batches that are still pending or running
// are always retained regardless of age.
func (r *Registry) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.batches {
		if !e.state.IsTerminal() {
			continue
		}
		if e.startedAt.Before(cutoff) {
			delete(r.batches, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of batches currently tracked.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.batches)
}
