package batch

import (
	"context"
)

// Gate is a counting permit pool shared by every batch the processor runs.
// It bounds the number of operations executing concurrently across the whole
// service, independent of how many batches are in flight.
type Gate struct {
	permits chan struct{}
}

// NewGate returns a Gate with capacity permits. Capacity values below one are
// clamped to one so a misconfigured gate can never deadlock.
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{permits: make(chan struct{}, capacity)}
}

// Acquire blocks until a permit is available or ctx is done. It returns
// ctx.Err() when the context wins the race.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.permits <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns one permit to the pool. It must be called exactly once per
// successful Acquire.
func (g *Gate) Release() {
	<-g.permits
}

// Capacity returns the total number of permits.
func (g *Gate) Capacity() int {
	return cap(g.permits)
}

// InFlight returns the number of permits currently held.
func (g *Gate) InFlight() int {
	return len(g.permits)
}
