// Package pool implements the fixed-size slot pool backing the pipeline. It
// owns a set of reusable executor slots, tracks which are idle versus busy and
// hands out idle slots without ever blocking. Exhaustion is signaled to the
// submitter as backpressure, not as an error.
package pool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/inferpipe/core"
)

// Pool owns a fixed set of executor slots. All operations are O(1) and
// serialized by a single mutex; no two acquisitions can return the same slot
// concurrently.
type Pool struct {
	mu   sync.Mutex
	idle []core.Slot
	busy map[string]core.Slot
}

// New constructs a pool over the given slots. The slot set is fixed for the
// lifetime of the pool.
func New(slots []core.Slot) (*Pool, error) {
	if len(slots) == 0 {
		return nil, core.ErrEmptyPool
	}

	p := &Pool{
		idle: make([]core.Slot, len(slots)),
		busy: make(map[string]core.Slot, len(slots)),
	}
	copy(p.idle, slots)

	// Duplicate ids would corrupt the release bookkeeping.
	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		if _, ok := seen[s.ID()]; ok {
			return nil, fmt.Errorf("pool: duplicate slot id %q", s.ID())
		}
		seen[s.ID()] = struct{}{}
	}

	return p, nil
}

// Size returns the fixed number of slots the pool owns.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.idle) + len(p.busy)
}

// IdleAvailable reports whether at least one slot is idle. Non-blocking.
func (p *Pool) IdleAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.idle) > 0
}

// IdleCount returns the number of currently idle slots.
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.idle)
}

// AllIdle reports whether no slot is busy. Teardown uses this to detect that
// every dispatched completion has fired.
func (p *Pool) AllIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.busy) == 0
}

// Acquire hands out an idle slot, or reports false when every slot is busy.
// It never blocks.
func (p *Pool) Acquire() (core.Slot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) == 0 {
		return nil, false
	}

	s := p.idle[len(p.idle)-1]
	p.idle = p.idle[:len(p.idle)-1]
	p.busy[s.ID()] = s

	return s, true
}

// Release marks a previously acquired slot idle again. It must be called
// exactly once per acquisition, after the slot's dispatch has fully completed.
func (p *Pool) Release(s core.Slot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.busy[s.ID()]; !ok {
		return fmt.Errorf("pool: slot %q: %w", s.ID(), core.ErrSlotNotBusy)
	}

	delete(p.busy, s.ID())
	p.idle = append(p.idle, s)

	return nil
}
