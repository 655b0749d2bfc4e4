// Package metrics accumulates per-frame performance figures for the pipeline.
// The retrieval path feeds it the dispatch start timestamp of every delivered
// frame; the recorder derives latency and throughput from those samples.
package metrics

import (
	"sync"
	"time"
)

// Recorder is a running accumulator of frame latencies. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	first time.Time
	last  time.Time
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Update records one delivered frame given its dispatch start time.
func (r *Recorder) Update(start time.Time) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		r.first = start
	}
	r.count++
	r.total += now.Sub(start)
	r.last = now
}

// Count returns the number of delivered frames recorded so far.
func (r *Recorder) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}

// MeanLatency returns the average dispatch-to-delivery latency, or zero when
// nothing has been recorded.
func (r *Recorder) MeanLatency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return 0
	}

	return r.total / time.Duration(r.count)
}

// Throughput returns delivered frames per second over the observed window,
// from the first recorded dispatch to the last delivery.
func (r *Recorder) Throughput() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return 0
	}

	window := r.last.Sub(r.first)
	if window <= 0 {
		return 0
	}

	return float64(r.count) / window.Seconds()
}
