package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hupe1980/inferpipe/core"
	"github.com/hupe1980/inferpipe/logging"
	"github.com/hupe1980/inferpipe/metrics"
	"github.com/hupe1980/inferpipe/pool"
)

// DefaultPoolSize is the number of executor slots used when none is
// configured.
const DefaultPoolSize = 4

// Options configures a Pipeline instance using the functional options pattern.
type Options struct {
	// PoolSize is the fixed number of reusable executor slots, which bounds
	// the number of frames in flight. Defaults to DefaultPoolSize.
	PoolSize int

	// Preprocessor transforms raw input into the executor payload plus
	// metadata at submission time. Defaults to the identity transform.
	Preprocessor core.Preprocessor

	// Postprocessor transforms a dequeued result into the final value at
	// retrieval time. Defaults to the identity transform.
	Postprocessor core.Postprocessor

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger

	// Metrics receives dispatch start timestamps as frames are delivered.
	// Defaults to a fresh Recorder.
	Metrics *metrics.Recorder
}

// Pipeline orchestrates asynchronous frame execution: it borrows slots from
// the pool, assigns monotonic frame identities, dispatches payloads on the
// executor and reorders completions so retrieval sees strict submission
// order. See the package documentation for the concurrency model.
type Pipeline struct {
	mu   sync.Mutex
	cond *sync.Cond

	exec   core.Executor
	pool   *pool.Pool
	seq    sequencer
	buf    *buffer
	fault  error
	closed bool

	pre     core.Preprocessor
	post    core.Postprocessor
	logger  logging.Logger
	metrics *metrics.Recorder
}

// New creates a Pipeline over the given executor, allocating PoolSize slots
// from it.
func New(exec core.Executor, optFns ...func(o *Options)) (*Pipeline, error) {
	if exec == nil {
		return nil, fmt.Errorf("pipeline: executor must not be nil")
	}

	opts := Options{
		PoolSize: DefaultPoolSize,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.PoolSize <= 0 {
		return nil, fmt.Errorf("pipeline: pool size must be positive, got %d", opts.PoolSize)
	}
	if opts.Preprocessor == nil {
		opts.Preprocessor = core.IdentityPreprocessor()
	}
	if opts.Postprocessor == nil {
		opts.Postprocessor = core.IdentityPostprocessor()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRecorder()
	}

	slots, err := exec.NewSlots(opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create slots: %w", err)
	}

	pl, err := pool.New(slots)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	p := &Pipeline{
		exec:    exec,
		pool:    pl,
		buf:     newBuffer(),
		pre:     opts.Preprocessor,
		post:    opts.Postprocessor,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	p.cond = sync.NewCond(&p.mu)

	return p, nil
}

// Submit preprocesses raw input and dispatches it on an idle slot, returning
// the assigned frame identity. It never blocks: when every slot is busy it
// returns core.ErrNoCapacity without assigning an identity, and the caller
// retries once an idle slot is signaled (or uses SubmitWait). The context is
// handed to the executor and covers the asynchronous execution of this frame,
// so it must outlive it.
func (p *Pipeline) Submit(ctx context.Context, raw any) (core.FrameID, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, core.ErrClosed
	}
	slot, ok := p.pool.Acquire()
	p.mu.Unlock()

	if !ok {
		return 0, core.ErrNoCapacity
	}

	payload, meta, err := p.pre.Transform(raw)
	if err != nil {
		// Preprocess failures are synchronous and must not cost capacity or
		// burn an identity.
		p.releaseSlot(slot)
		return 0, fmt.Errorf("pipeline: preprocess: %w", err)
	}

	p.mu.Lock()
	id := p.seq.nextSubmitID()
	p.mu.Unlock()

	start := time.Now()
	if err := p.exec.Dispatch(ctx, slot, payload, p.completion(id, slot, meta, start)); err != nil {
		// The identity is already assigned; without a completion the
		// retrieval path would stall on it forever, so a failed dispatch
		// latches the fault.
		err = fmt.Errorf("pipeline: dispatch frame %d: %w", id, err)
		p.mu.Lock()
		p.latchLocked(err)
		if rerr := p.pool.Release(slot); rerr != nil {
			p.latchLocked(fmt.Errorf("pipeline: release slot %s: %w", slot.ID(), rerr))
		}
		p.cond.Broadcast()
		p.mu.Unlock()
		return 0, err
	}

	p.logger.Debug("frame dispatched", "frame_id", int64(id), "slot_id", slot.ID())

	return id, nil
}

// SubmitWait is the blocking counterpart of Submit: on core.ErrNoCapacity it
// waits until an idle slot is signaled and retries. It returns early when the
// fault latches, the pipeline closes or ctx ends.
func (p *Pipeline) SubmitWait(ctx context.Context, raw any) (core.FrameID, error) {
	for {
		id, err := p.Submit(ctx, raw)
		if err == nil || !errors.Is(err, core.ErrNoCapacity) {
			return id, err
		}

		p.mu.Lock()
		for !p.pool.IdleAvailable() && p.fault == nil && !p.closed && ctx.Err() == nil {
			p.waitLocked(ctx)
		}
		if p.fault != nil {
			err := p.fault
			p.mu.Unlock()
			return 0, err
		}
		if p.closed {
			p.mu.Unlock()
			return 0, core.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return 0, err
		}
		p.mu.Unlock()
	}
}

// Retrieve returns the next frame in submission order without blocking. When
// that frame has not completed yet it returns core.ErrNotReady; a latched
// fault takes precedence over any buffered result.
func (p *Pipeline) Retrieve() (core.Result, error) {
	p.mu.Lock()
	if p.fault != nil {
		err := p.fault
		p.mu.Unlock()
		return core.Result{}, err
	}
	if p.closed {
		p.mu.Unlock()
		return core.Result{}, core.ErrClosed
	}
	res, ok := p.buf.pop(p.seq.expectedID())
	if !ok {
		p.mu.Unlock()
		return core.Result{}, core.ErrNotReady
	}
	p.seq.advanceExpected()
	p.mu.Unlock()

	return p.deliver(res)
}

// WaitRetrieve blocks until the next frame in submission order is available
// and returns it. A latched fault is returned instead, on this and every
// later call, since the pipeline is no longer trustworthy. Wakeups caused
// only by a freed slot go back to sleep.
func (p *Pipeline) WaitRetrieve(ctx context.Context) (core.Result, error) {
	p.mu.Lock()
	for {
		if p.fault != nil {
			err := p.fault
			p.mu.Unlock()
			return core.Result{}, err
		}
		if p.closed {
			p.mu.Unlock()
			return core.Result{}, core.ErrClosed
		}
		if res, ok := p.buf.pop(p.seq.expectedID()); ok {
			p.seq.advanceExpected()
			p.mu.Unlock()
			return p.deliver(res)
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return core.Result{}, err
		}
		p.waitLocked(ctx)
	}
}

// InFlight reports the number of frames submitted but not yet delivered.
func (p *Pipeline) InFlight() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.seq.inFlight()
}

// Metrics returns the performance recorder fed by the retrieval path.
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.metrics
}

// Close drains the pipeline and releases the executor. Further submissions
// and retrievals fail with core.ErrClosed; blocked callers are woken. Close
// waits until every dispatched completion has fired so no handler can fire
// into torn-down state, then discards undrained results. Safe to call more
// than once.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	for !p.pool.AllIdle() {
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return err
		}
		p.waitLocked(ctx)
	}
	discarded := p.buf.len()
	p.buf.clear()
	p.mu.Unlock()

	if discarded > 0 {
		p.logger.Debug("discarded unretrieved results on close", "count", discarded)
	}

	if c, ok := p.exec.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// completion builds the handler the executor invokes when the frame finishes.
// It may run on any goroutine, concurrently with other handlers and with
// retrieval calls. The slot is released only after the result is durably
// recorded, under the same lock, so a new dispatch cannot reuse it before the
// bookkeeping is done.
func (p *Pipeline) completion(id core.FrameID, slot core.Slot, meta any, start time.Time) core.CompletionFunc {
	return func(outputs any, err error) {
		p.mu.Lock()
		switch {
		case err != nil:
			p.latchLocked(fmt.Errorf("pipeline: frame %d: executor: %w", id, err))
		default:
			res := core.Result{FrameID: id, StartedAt: start, Meta: meta, Outputs: outputs}
			if ierr := p.buf.insert(res); ierr != nil {
				p.latchLocked(fmt.Errorf("pipeline: %w", ierr))
			} else {
				p.logger.Debug("frame completed", "frame_id", int64(id), "slot_id", slot.ID())
			}
		}
		if rerr := p.pool.Release(slot); rerr != nil {
			p.latchLocked(fmt.Errorf("pipeline: release slot %s: %w", slot.ID(), rerr))
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// deliver finalizes a dequeued result: records the latency sample and applies
// the postprocessor. Called without the lock held.
func (p *Pipeline) deliver(res core.Result) (core.Result, error) {
	p.metrics.Update(res.StartedAt)

	out, err := p.post.Transform(res)
	if err != nil {
		return core.Result{}, fmt.Errorf("pipeline: postprocess frame %d: %w", res.FrameID, err)
	}
	res.Outputs = out

	p.logger.Debug("frame delivered", "frame_id", int64(res.FrameID))

	return res, nil
}

// latchLocked stores err as the pipeline fault unless one is already latched.
// The first fault wins and is surfaced to every later retrieval. Caller must
// hold the lock.
func (p *Pipeline) latchLocked(err error) {
	if p.fault != nil {
		return
	}
	p.fault = err
	p.logger.Error("pipeline fault latched", "error", err.Error())
}

// releaseSlot returns a slot that was never dispatched and wakes producers
// blocked on capacity.
func (p *Pipeline) releaseSlot(slot core.Slot) {
	p.mu.Lock()
	if err := p.pool.Release(slot); err != nil {
		p.latchLocked(fmt.Errorf("pipeline: release slot %s: %w", slot.ID(), err))
	}
	p.cond.Broadcast()
	p.mu.Unlock()
}

// waitLocked blocks on the condition variable with the lock held. When ctx
// can end, a watcher goroutine broadcasts the wakeup so the caller's loop can
// observe ctx.Err; the spurious broadcast to other waiters is harmless since
// every wait site re-checks its condition.
func (p *Pipeline) waitLocked(ctx context.Context) {
	if ctx.Done() == nil {
		p.cond.Wait()
		return
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-stop:
		}
	}()
	p.cond.Wait()
	close(stop)
}
