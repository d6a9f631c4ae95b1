package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrModelUnavailable is returned by model-backed steps after their
// initialization has failed: callers fail fast instead of re-triggering
// a load on every request. Retry re-arms the handle.
var ErrModelUnavailable = errors.New("model unavailable")

type handleState int

const (
	handleUninitialized handleState = iota
	handleInitializing
	handleReady
	handleFailed
)

// modelHandle owns the lazy one-time initialization of a model resource.
//
// The first caller runs initFn; concurrent callers during initialization
// await the same in-flight attempt rather than starting another one.
// A failed initialization sticks (Failed state) until Retry.
type modelHandle struct {
	name   string
	initFn func(ctx context.Context) error

	mu      sync.Mutex
	state   handleState
	lastErr error
	done    chan struct{} // closed when the in-flight initFn returns
}

func newModelHandle(name string, initFn func(ctx context.Context) error) *modelHandle {
	return &modelHandle{name: name, initFn: initFn}
}

// ensureReady blocks until the handle is Ready, or returns an error
// wrapping ErrModelUnavailable.
func (h *modelHandle) ensureReady(ctx context.Context) error {
	h.mu.Lock()

	switch h.state {
	case handleReady:
		h.mu.Unlock()
		return nil

	case handleFailed:
		err := h.lastErr
		h.mu.Unlock()
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, h.name, err)

	case handleInitializing:
		done := h.done
		h.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		return h.ensureReady(ctx)

	default: // handleUninitialized
		h.state = handleInitializing
		h.done = make(chan struct{})
		done := h.done
		h.mu.Unlock()

		err := h.initFn(ctx)

		h.mu.Lock()
		if err != nil {
			h.state = handleFailed
			h.lastErr = err
			logger.WithError(err).Errorf("modelHandle: %s initialization failed", h.name)
		} else {
			h.state = handleReady
			h.lastErr = nil
			logger.Infof("modelHandle: %s ready", h.name)
		}
		close(done)
		h.mu.Unlock()

		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, h.name, err)
		}
		return nil
	}
}

// Retry moves a Failed handle back to Uninitialized so that the next
// caller re-attempts initialization. No-op in any other state.
func (h *modelHandle) Retry() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == handleFailed {
		h.state = handleUninitialized
		h.lastErr = nil
	}
}
