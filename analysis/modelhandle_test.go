package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelHandleInitializesOnce(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})

	h := newModelHandle("test", func(ctx context.Context) error {
		calls.Add(1)
		<-gate
		return nil
	})

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.ensureReady(context.Background())
		}(i)
	}

	close(gate)
	wg.Wait()

	// every concurrent caller awaited the same in-flight load
	assert.Equal(t, int32(1), calls.Load())
	for _, err := range errs {
		assert.NoError(t, err)
	}

	require.NoError(t, h.ensureReady(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestModelHandleFailsFastAfterFailure(t *testing.T) {
	var calls atomic.Int32
	h := newModelHandle("test", func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("model load blew up")
	})

	err := h.ensureReady(context.Background())
	require.ErrorIs(t, err, ErrModelUnavailable)

	// later calls fail fast, no re-attempt per request
	err = h.ensureReady(context.Background())
	require.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestModelHandleRetryReArms(t *testing.T) {
	var calls atomic.Int32
	h := newModelHandle("test", func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("first load fails")
		}
		return nil
	})

	require.ErrorIs(t, h.ensureReady(context.Background()), ErrModelUnavailable)

	h.Retry()
	require.NoError(t, h.ensureReady(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestModelHandleRetryIsNoOpWhenReady(t *testing.T) {
	var calls atomic.Int32
	h := newModelHandle("test", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, h.ensureReady(context.Background()))
	h.Retry()
	require.NoError(t, h.ensureReady(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}
