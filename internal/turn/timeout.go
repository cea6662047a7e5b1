// Package turn bounds the duration of a single question turn and renders its
// result for display.
package turn

import (
	"context"
	"time"
)

// DefaultTimeout is the per-turn budget.
const DefaultTimeout = 30 * time.Second

// TimeoutMessage is returned in place of a result when the budget runs out.
const TimeoutMessage = "timeout exceeded, please rephrase your question"

// InvokeFunc is the work performed in one turn.
type InvokeFunc func(ctx context.Context, input string) (any, error)

type outcome struct {
	val any
	err error
}

// RunWithTimeout runs fn(input) on its own goroutine and waits for it or for
// the timeout, whichever comes first. A result that arrives in time is
// returned unchanged, error included. When the timeout wins the call returns
// TimeoutMessage with a nil error; fn's context is cancelled so cooperative
// work stops, and anything fn returns afterwards is discarded. Cancelling the
// parent context returns its error. timeout <= 0 selects DefaultTimeout.
func RunWithTimeout(ctx context.Context, fn InvokeFunc, input string, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so an abandoned task never blocks on send.
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(taskCtx, input)
		done <- outcome{val: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.val, o.err
	case <-timer.C:
		return TimeoutMessage, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
