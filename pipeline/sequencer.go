package pipeline

import (
	"math"

	"github.com/hupe1980/inferpipe/core"
)

// sequencer tracks the two monotonically increasing frame counters: the next
// identity to assign on submission and the next identity expected by the
// retrieval path. Both wrap from the maximum positive value back to zero
// instead of going negative. Not safe for concurrent use on its own; the
// pipeline guards it with its lock so assignment order matches dispatch
// order.
type sequencer struct {
	nextSubmit   core.FrameID
	nextExpected core.FrameID
}

// nextSubmitID returns the identity for a new submission and advances the
// submission counter.
func (s *sequencer) nextSubmitID() core.FrameID {
	id := s.nextSubmit
	s.nextSubmit++
	if s.nextSubmit < 0 {
		s.nextSubmit = 0
	}
	return id
}

// expectedID peeks the identity the retrieval path is waiting for.
func (s *sequencer) expectedID() core.FrameID {
	return s.nextExpected
}

// advanceExpected moves on to the next frame after a successful retrieval.
func (s *sequencer) advanceExpected() {
	s.nextExpected++
	if s.nextExpected < 0 {
		s.nextExpected = 0
	}
}

// inFlight returns the number of frames submitted but not yet delivered. The
// difference is computed modulo the wrap point so counter wraparound does not
// break the accounting.
func (s *sequencer) inFlight() int64 {
	d := int64(s.nextSubmit) - int64(s.nextExpected)
	if d < 0 {
		d += math.MaxInt64
		d++
	}
	return d
}
