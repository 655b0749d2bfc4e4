package core

import "fmt"

var (
	// ErrNoCapacity is returned by a submission when every slot is busy. It is
	// expected backpressure, not a failure: the caller retries after an idle
	// slot is signaled, or drops the unit of work. No frame identity is
	// assigned on this path.
	ErrNoCapacity = fmt.Errorf("no idle slot available")

	// ErrNotReady is returned by a non-blocking retrieval when the next
	// expected frame has not completed yet.
	ErrNotReady = fmt.Errorf("next frame not ready")

	// ErrClosed is returned once the pipeline has been closed.
	ErrClosed = fmt.Errorf("pipeline closed")

	// ErrDuplicateCompletion indicates an executor invoked the completion
	// callback twice for the same frame. This is an internal invariant
	// violation; it latches the pipeline fault state.
	ErrDuplicateCompletion = fmt.Errorf("duplicate completion")

	// ErrSlotNotBusy indicates a release of a slot that was not acquired, or
	// was already released.
	ErrSlotNotBusy = fmt.Errorf("slot not busy")

	// ErrEmptyPool indicates a pool was constructed without any slots.
	ErrEmptyPool = fmt.Errorf("pool needs at least one slot")
)
