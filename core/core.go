package core

import (
	"context"
	"time"
)

// FrameID identifies one submitted unit of work. Identities are assigned in
// strictly increasing order at submission time and wrap from the maximum
// positive value back to zero, so they stay usable as non-negative keys
// indefinitely.
type FrameID int64

// Result is the completed outcome of one dispatched frame. It is immutable
// once constructed by a completion handler and is handed to the caller in
// strict submission order.
type Result struct {
	// FrameID is the identity assigned at submission.
	FrameID FrameID

	// StartedAt is the dispatch start timestamp, recorded just before the
	// frame was handed to the executor. Feeds the performance recorder.
	StartedAt time.Time

	// Meta carries the caller supplied context attached at submission,
	// typically the original input a postprocessor needs.
	Meta any

	// Outputs is the payload the executor produced. After retrieval it holds
	// the postprocessed value.
	Outputs any
}

// CompletionFunc is invoked by an Executor exactly once per dispatch, with
// either the produced outputs or an error. It may be called from any
// goroutine.
type CompletionFunc func(outputs any, err error)

// Slot is an opaque handle to one reusable executor resource. A slot is never
// used by more than one in-flight dispatch at a time; the pool enforces this
// through its acquire/release protocol.
type Slot interface {
	// ID returns a stable identifier unique within the executor's slot set.
	ID() string
}

// Executor is the compute backend that actually runs submitted work. The
// pipeline does not know what the work represents, only that a dispatch on a
// slot eventually produces outputs or an error through the completion
// callback.
type Executor interface {
	// NewSlots allocates n reusable execution slots for the pool.
	NewSlots(n int) ([]Slot, error)

	// Dispatch starts asynchronous execution of payload on slot. It must not
	// block the calling goroutine and must arrange for done to be invoked
	// exactly once, possibly from another goroutine. The context covers the
	// background execution, so it must outlive the frame; callers typically
	// pass a pipeline-lifetime context.
	Dispatch(ctx context.Context, slot Slot, payload any, done CompletionFunc) error
}

// Preprocessor transforms raw caller input into the payload handed to the
// executor plus metadata carried through to the result. It is invoked
// synchronously during submission, before a slot is dispatched.
type Preprocessor interface {
	Transform(raw any) (payload any, meta any, err error)
}

// PreprocessorFunc adapts a plain function to the Preprocessor interface.
type PreprocessorFunc func(raw any) (any, any, error)

// Transform implements Preprocessor.
func (f PreprocessorFunc) Transform(raw any) (any, any, error) { return f(raw) }

// Postprocessor transforms a completed result into the final value returned
// to the caller. It is invoked synchronously during retrieval, after the
// result has been dequeued in order.
type Postprocessor interface {
	Transform(res Result) (any, error)
}

// PostprocessorFunc adapts a plain function to the Postprocessor interface.
type PostprocessorFunc func(res Result) (any, error)

// Transform implements Postprocessor.
func (f PostprocessorFunc) Transform(res Result) (any, error) { return f(res) }

// IdentityPreprocessor passes raw input through unchanged with no metadata.
func IdentityPreprocessor() Preprocessor {
	return PreprocessorFunc(func(raw any) (any, any, error) { return raw, nil, nil })
}

// IdentityPostprocessor returns the executor outputs unchanged.
func IdentityPostprocessor() Postprocessor {
	return PostprocessorFunc(func(res Result) (any, error) { return res.Outputs, nil })
}
