package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_Empty(t *testing.T) {
	r := NewRecorder()

	assert.Equal(t, int64(0), r.Count())
	assert.Equal(t, time.Duration(0), r.MeanLatency())
	assert.Equal(t, float64(0), r.Throughput())
}

func TestRecorder_AccumulatesLatency(t *testing.T) {
	r := NewRecorder()

	r.Update(time.Now().Add(-20 * time.Millisecond))
	r.Update(time.Now().Add(-40 * time.Millisecond))

	assert.Equal(t, int64(2), r.Count())
	assert.GreaterOrEqual(t, r.MeanLatency(), 20*time.Millisecond)
	assert.Greater(t, r.Throughput(), float64(0))
}
