package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Call runs fn under a deadline of timeout derived from ctx and returns its
// result. fn must honour its context. A non-positive timeout runs fn with
// ctx unchanged.
func Call[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return v, fmt.Errorf("%s: %w (limit: %v)", name, context.DeadlineExceeded, timeout)
	}
	return v, err
}

// Guard runs fn through cb and returns its value. Rejected calls return the
// zero value and an error wrapping ErrCircuitOpen.
func Guard[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var v T
	err := cb.Execute(func() error {
		var err error
		v, err = fn()
		return err
	})
	return v, err
}
