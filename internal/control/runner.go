// Package control gives front ends a handle on the monitoring worker:
// an idempotent start guard, cooperative stop with a join timeout, and
// a channel-backed log stream.
package control

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAlreadyRunning is returned by Start while a worker is active.
	ErrAlreadyRunning = errors.New("monitor already running")
	// ErrStopTimeout is returned by Stop when the worker does not exit
	// within the timeout. The worker is never force-killed.
	ErrStopTimeout = errors.New("monitor did not stop in time")
)

// Runner owns the lifecycle of a single background worker goroutine.
type Runner struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates an idle Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Start launches run on a new goroutine. A second Start while the
// previous worker is still running returns ErrAlreadyRunning.
func (r *Runner) Start(run func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		select {
		case <-r.done:
		default:
			return ErrAlreadyRunning
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		run(ctx)
	}()
	return nil
}

// Running reports whether a worker goroutine is currently active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Stop signals cancellation and waits up to timeout for the worker to
// observe it. Stopping an idle runner is a no-op.
func (r *Runner) Stop(timeout time.Duration) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		r.mu.Lock()
		r.cancel, r.done = nil, nil
		r.mu.Unlock()
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}
