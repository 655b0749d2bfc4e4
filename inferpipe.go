// Package inferpipe provides a high-level façade over the pipeline
// orchestration and executor abstractions enabling asynchronous,
// frame-ordered inference against pluggable compute backends. Most
// applications interact with this package by:
//  1. Creating a Pipe via New() around an executor (local, openai, anthropic
//     or a custom core.Executor)
//  2. Submitting frames (Submit for backpressure-aware producers, SubmitWait
//     to block for capacity)
//  3. Retrieving results in strict submission order (WaitRetrieve blocking,
//     Retrieve non-blocking) regardless of the order the backend finishes
//  4. Closing the Pipe, which drains every in-flight completion first
//
// The façade delegates orchestration to pipeline.Pipeline while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply model specific pre and
// postprocessors and a structured logger.
package inferpipe

import (
	"context"

	"github.com/hupe1980/inferpipe/core"
	"github.com/hupe1980/inferpipe/logging"
	"github.com/hupe1980/inferpipe/metrics"
	"github.com/hupe1980/inferpipe/pipeline"
)

// DefaultPoolSize is the slot count used when none is configured.
const DefaultPoolSize = pipeline.DefaultPoolSize

// Options configures the Pipe instance.
type Options struct {
	// PoolSize bounds the number of frames in flight. Defaults to
	// DefaultPoolSize.
	PoolSize int

	// Preprocessor transforms raw input into the executor payload plus
	// metadata (defaults to identity).
	Preprocessor core.Preprocessor

	// Postprocessor transforms dequeued results into final values (defaults
	// to identity).
	Postprocessor core.Postprocessor

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Pipe is the high-level façade aggregating the underlying ordering pipeline
// and its executor.
type Pipe struct {
	opts Options
	pipe *pipeline.Pipeline
}

// New creates a new Pipe over the given executor with optional overrides.
func New(exec core.Executor, optFns ...func(o *Options)) (*Pipe, error) {
	opts := Options{
		PoolSize: DefaultPoolSize,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	p, err := pipeline.New(exec, func(o *pipeline.Options) {
		o.PoolSize = opts.PoolSize
		o.Preprocessor = opts.Preprocessor
		o.Postprocessor = opts.Postprocessor
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Pipe{opts: opts, pipe: p}, nil
}

// Submit dispatches one frame without blocking; when every slot is busy it
// returns core.ErrNoCapacity and assigns no identity.
func (p *Pipe) Submit(ctx context.Context, raw any) (core.FrameID, error) {
	return p.pipe.Submit(ctx, raw)
}

// SubmitWait dispatches one frame, blocking until capacity is available.
func (p *Pipe) SubmitWait(ctx context.Context, raw any) (core.FrameID, error) {
	return p.pipe.SubmitWait(ctx, raw)
}

// Retrieve returns the next frame in submission order without blocking, or
// core.ErrNotReady.
func (p *Pipe) Retrieve() (core.Result, error) {
	return p.pipe.Retrieve()
}

// WaitRetrieve blocks until the next frame in submission order is available.
func (p *Pipe) WaitRetrieve(ctx context.Context) (core.Result, error) {
	return p.pipe.WaitRetrieve(ctx)
}

// InFlight reports the number of frames submitted but not yet delivered.
func (p *Pipe) InFlight() int64 {
	return p.pipe.InFlight()
}

// Metrics returns the performance recorder fed by the retrieval path.
func (p *Pipe) Metrics() *metrics.Recorder {
	return p.pipe.Metrics()
}

// Close drains all in-flight work and releases the executor.
func (p *Pipe) Close(ctx context.Context) error {
	return p.pipe.Close(ctx)
}
