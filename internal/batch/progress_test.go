package batch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_Counts(t *testing.T) {
	t.Parallel()

	tr := NewTracker(10)
	assert.Equal(t, 10, tr.Total())
	assert.Equal(t, 0, tr.Done())

	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordFailure()

	assert.Equal(t, 2, tr.Completed())
	assert.Equal(t, 1, tr.Failed())
	assert.Equal(t, 3, tr.Done())
}

func TestTracker_Percentage(t *testing.T) {
	t.Parallel()

	tr := NewTracker(4)
	assert.Equal(t, 0.0, tr.Percentage())

	tr.RecordSuccess()
	assert.InDelta(t, 25.0, tr.Percentage(), 0.001)

	tr.RecordFailure()
	tr.RecordSuccess()
	tr.RecordSuccess()
	assert.InDelta(t, 100.0, tr.Percentage(), 0.001)
}

func TestTracker_Percentage_EmptyBatch(t *testing.T) {
	t.Parallel()

	tr := NewTracker(0)
	assert.Equal(t, 0.0, tr.Percentage())
	assert.Equal(t, 0.0, tr.Snapshot("batch-1").Percentage)
}

func TestTracker_ETA_ZeroBeforeFirstCompletion(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Duration(0), NewTracker(5).ETA())
}

func TestTracker_ETA_ShrinksToZeroWhenDone(t *testing.T) {
	t.Parallel()

	tr := NewTracker(2)
	tr.RecordSuccess()
	assert.Greater(t, int64(tr.ETA()), int64(-1))

	tr.RecordSuccess()
	assert.Equal(t, time.Duration(0), tr.ETA())
}

func TestTracker_MonotonicUnderConcurrency(t *testing.T) {
	t.Parallel()

	const total = 200
	tr := NewTracker(total)

	done := make(chan struct{})
	go func() {
		defer close(done)
		prev := 0.0
		for tr.Done() < total {
			pct := tr.Percentage()
			if pct < prev {
				t.Errorf("percentage went backwards: %f -> %f", prev, pct)
				return
			}
			prev = pct
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				tr.RecordFailure()
			} else {
				tr.RecordSuccess()
			}
		}(i)
	}
	wg.Wait()
	<-done

	assert.Equal(t, total, tr.Done())
	assert.InDelta(t, 100.0, tr.Percentage(), 0.001)
}

func TestTracker_Snapshot(t *testing.T) {
	t.Parallel()

	tr := NewTracker(8)
	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordFailure()

	snap := tr.Snapshot("batch-1")
	assert.Equal(t, "batch-1", snap.BatchID)
	assert.Equal(t, 8, snap.Total)
	assert.Equal(t, 2, snap.Completed)
	assert.Equal(t, 1, snap.Failed)
	assert.InDelta(t, 37.5, snap.Percentage, 0.001)
	assert.GreaterOrEqual(t, snap.ElapsedMs, int64(0))
}
