package pipeline

import (
	"math"
	"testing"

	"github.com/hupe1980/inferpipe/core"
	"github.com/stretchr/testify/assert"
)

func TestSequencer_AssignsMonotonically(t *testing.T) {
	var s sequencer

	assert.Equal(t, core.FrameID(0), s.nextSubmitID())
	assert.Equal(t, core.FrameID(1), s.nextSubmitID())
	assert.Equal(t, core.FrameID(2), s.nextSubmitID())

	assert.Equal(t, core.FrameID(0), s.expectedID())
	s.advanceExpected()
	assert.Equal(t, core.FrameID(1), s.expectedID())

	assert.Equal(t, int64(2), s.inFlight())
}

func TestSequencer_WrapsToZero(t *testing.T) {
	s := sequencer{nextSubmit: math.MaxInt64, nextExpected: math.MaxInt64}

	assert.Equal(t, core.FrameID(math.MaxInt64), s.nextSubmitID())
	assert.Equal(t, core.FrameID(0), s.nextSubmitID())
	assert.Equal(t, core.FrameID(1), s.nextSubmitID())

	assert.Equal(t, core.FrameID(math.MaxInt64), s.expectedID())
	s.advanceExpected()
	assert.Equal(t, core.FrameID(0), s.expectedID())
}

func TestSequencer_InFlightAcrossWrap(t *testing.T) {
	s := sequencer{nextSubmit: math.MaxInt64, nextExpected: math.MaxInt64}

	s.nextSubmitID() // MaxInt64
	s.nextSubmitID() // 0
	s.nextSubmitID() // 1

	assert.Equal(t, int64(3), s.inFlight())

	s.advanceExpected()
	assert.Equal(t, int64(2), s.inFlight())
}
