package batch

import (
	"sync/atomic"
	"time"

	"github.com/retailcore/commerce-batch/pkg/types/batch"
)

// Tracker counts finished operations for one batch. Counters only ever grow,
// so any two snapshots taken in order report monotonically non-decreasing
// progress. All methods are safe for concurrent use.
type Tracker struct {
	total     int64
	completed atomic.Int64
	failed    atomic.Int64
	startedAt time.Time
}

// NewTracker returns a Tracker for a batch of total operations, started now.
func NewTracker(total int) *Tracker {
	return &Tracker{
		total:     int64(total),
		startedAt: time.Now(),
	}
}

// RecordSuccess counts one successfully finished operation.
func (t *Tracker) RecordSuccess() {
	t.completed.Add(1)
}

// RecordFailure counts one failed operation.
func (t *Tracker) RecordFailure() {
	t.failed.Add(1)
}

// Total returns the number of operations in the batch.
func (t *Tracker) Total() int {
	return int(t.total)
}

// Completed returns the number of operations that succeeded so far.
func (t *Tracker) Completed() int {
	return int(t.completed.Load())
}

// Failed returns the number of operations that failed so far.
func (t *Tracker) Failed() int {
	return int(t.failed.Load())
}

// Done returns the number of operations that finished, regardless of outcome.
func (t *Tracker) Done() int {
	return int(t.completed.Load() + t.failed.Load())
}

// StartedAt returns the moment the tracker was created.
func (t *Tracker) StartedAt() time.Time {
	return t.startedAt
}

// Percentage returns completion as a value in [0, 100]. An empty batch
// reports 0%.
func (t *Tracker) Percentage() float64 {
	if t.total == 0 {
		return 0.0
	}
	return float64(t.Done()) / float64(t.total) * 100.0
}

// ETA estimates the remaining duration from the average time per finished
// operation. It returns zero until at least one operation has finished.
func (t *Tracker) ETA() time.Duration {
	done := t.Done()
	if done == 0 {
		return 0
	}
	remaining := int(t.total) - done
	if remaining <= 0 {
		return 0
	}
	avg := time.Since(t.startedAt) / time.Duration(done)
	return avg * time.Duration(remaining)
}

// Snapshot captures the tracker as a wire-level Progress for batchID.
func (t *Tracker) Snapshot(batchID string) batch.Progress {
	// Read the counters once so the snapshot is internally consistent even
	// while operations keep finishing.
	completed := int(t.completed.Load())
	failed := int(t.failed.Load())
	done := completed + failed

	pct := 0.0
	if t.total > 0 {
		pct = float64(done) / float64(t.total) * 100.0
	}

	elapsed := time.Since(t.startedAt)
	var eta time.Duration
	if done > 0 && int(t.total)-done > 0 {
		eta = elapsed / time.Duration(done) * time.Duration(int(t.total)-done)
	}

	return batch.Progress{
		BatchID:        batchID,
		Total:          int(t.total),
		Completed:      completed,
		Failed:         failed,
		Percentage:     pct,
		ElapsedMs:      elapsed.Milliseconds(),
		EstimatedMsETA: eta.Milliseconds(),
	}
}
