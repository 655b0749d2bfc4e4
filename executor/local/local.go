// Package local provides an in-process executor that runs a user supplied
// compute function, one goroutine per dispatched frame. Slots carry no
// backend state here; they act as capacity tokens bounding the number of
// concurrent computations. It is the natural backend for tests and CPU-bound
// workloads.
package local

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/inferpipe/core"
)

// ComputeFunc executes one unit of work and returns its outputs.
type ComputeFunc func(ctx context.Context, payload any) (any, error)

type slot struct {
	id string
}

// ID returns the slot identifier.
func (s slot) ID() string { return s.id }

// Executor runs ComputeFunc asynchronously per dispatch.
type Executor struct {
	compute ComputeFunc
}

// New creates a local executor around the given compute function.
func New(compute ComputeFunc) *Executor {
	return &Executor{compute: compute}
}

// NewSlots allocates n capacity tokens.
func (e *Executor) NewSlots(n int) ([]core.Slot, error) {
	if n <= 0 {
		return nil, fmt.Errorf("local: slot count must be positive, got %d", n)
	}

	slots := make([]core.Slot, n)
	for i := range slots {
		slots[i] = slot{id: uuid.NewString()}
	}

	return slots, nil
}

// Dispatch runs the compute function on its own goroutine and reports the
// outcome through done. It never blocks the caller.
func (e *Executor) Dispatch(ctx context.Context, _ core.Slot, payload any, done core.CompletionFunc) error {
	if e.compute == nil {
		return fmt.Errorf("local: no compute function configured")
	}
	if done == nil {
		return fmt.Errorf("local: completion callback must not be nil")
	}

	go func() {
		outputs, err := e.compute(ctx, payload)
		done(outputs, err)
	}()

	return nil
}
