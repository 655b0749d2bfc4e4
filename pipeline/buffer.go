package pipeline

import (
	"fmt"

	"github.com/hupe1980/inferpipe/core"
)

// buffer maps frame identities to completed results. Completion handlers
// insert, the retrieval path removes exactly once, keyed by the expected
// identity. Entries are never mutated after insertion. The pipeline lock
// guards all access.
type buffer struct {
	results map[core.FrameID]core.Result
}

func newBuffer() *buffer {
	return &buffer{results: make(map[core.FrameID]core.Result)}
}

// insert stores a completed result. A second insertion for the same frame is
// a contract violation and is reported instead of overwriting the entry.
func (b *buffer) insert(res core.Result) error {
	if _, ok := b.results[res.FrameID]; ok {
		return fmt.Errorf("frame %d: %w", res.FrameID, core.ErrDuplicateCompletion)
	}
	b.results[res.FrameID] = res
	return nil
}

// pop removes and returns the result for id, if present.
func (b *buffer) pop(id core.FrameID) (core.Result, bool) {
	res, ok := b.results[id]
	if ok {
		delete(b.results, id)
	}
	return res, ok
}

// contains reports whether id has completed but not yet been drained.
func (b *buffer) contains(id core.FrameID) bool {
	_, ok := b.results[id]
	return ok
}

func (b *buffer) len() int {
	return len(b.results)
}

// clear drops all undrained results. Only teardown uses this.
func (b *buffer) clear() {
	b.results = make(map[core.FrameID]core.Result)
}
