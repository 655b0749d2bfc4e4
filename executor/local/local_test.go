package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlots(t *testing.T) {
	e := New(nil)

	slots, err := e.NewSlots(3)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	ids := map[string]struct{}{}
	for _, s := range slots {
		ids[s.ID()] = struct{}{}
	}
	assert.Len(t, ids, 3)

	_, err = e.NewSlots(0)
	assert.Error(t, err)
}

func TestDispatch_InvokesCompletion(t *testing.T) {
	e := New(func(_ context.Context, payload any) (any, error) {
		return payload.(int) * 2, nil
	})

	slots, err := e.NewSlots(1)
	require.NoError(t, err)

	done := make(chan any, 1)
	err = e.Dispatch(context.Background(), slots[0], 21, func(outputs any, err error) {
		assert.NoError(t, err)
		done <- outputs
	})
	require.NoError(t, err)

	select {
	case out := <-done:
		assert.Equal(t, 42, out)
	case <-time.After(time.Second):
		t.Fatal("completion never fired")
	}
}

func TestDispatch_PropagatesComputeError(t *testing.T) {
	computeErr := errors.New("kernel panic")
	e := New(func(context.Context, any) (any, error) {
		return nil, computeErr
	})

	slots, err := e.NewSlots(1)
	require.NoError(t, err)

	done := make(chan error, 1)
	err = e.Dispatch(context.Background(), slots[0], "x", func(_ any, err error) {
		done <- err
	})
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, computeErr)
	case <-time.After(time.Second):
		t.Fatal("completion never fired")
	}
}

func TestDispatch_Validation(t *testing.T) {
	e := New(nil)
	err := e.Dispatch(context.Background(), nil, "x", func(any, error) {})
	assert.Error(t, err)

	e = New(func(context.Context, any) (any, error) { return nil, nil })
	err = e.Dispatch(context.Background(), nil, "x", nil)
	assert.Error(t, err)
}
