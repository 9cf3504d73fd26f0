// Package recovery provides retry-with-backoff and fallback-chain
// combinators used by the texture loader and the render orchestrator.
//
// Stages and attempts communicate through Result values rather than thrown
// errors; only the single final failure surfaced to the caller is an error.
package recovery

import (
	"context"
	"errors"
	"time"
)

// Result is the outcome of one attempt or stage.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool { return r.Err == nil }

// Unpack converts the result back into Go's conventional (value, error) pair.
func (r Result[T]) Unpack() (T, error) { return r.Value, r.Err }

// Policy configures Retry.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// 0 means a single attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Each subsequent retry
	// doubles the delay (BaseDelay * 2^attempt), capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. 0 means no cap.
	MaxDelay time.Duration

	// Retryable classifies errors. A nil Retryable retries everything.
	Retryable func(error) bool

	// sleep is a test seam; nil uses a context-aware timer sleep.
	sleep func(context.Context, time.Duration) error
}

// WithSleep returns a copy of the policy using fn instead of a real timer.
// Exposed for tests that assert on backoff without waiting.
func (p Policy) WithSleep(fn func(context.Context, time.Duration) error) Policy {
	p.sleep = fn
	return p
}

// Delay returns the backoff delay before retry attempt n (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d < p.BaseDelay {
		// Shift overflowed.
		d = p.MaxDelay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retry runs op up to 1+MaxRetries times with exponential backoff between
// attempts. It stops early on success, on a non-retryable error, or when
// the context is canceled. The returned Result carries the last failure.
func Retry[T any](ctx context.Context, p Policy, op func(context.Context) Result[T]) Result[T] {
	sleep := p.sleep
	if sleep == nil {
		sleep = timerSleep
	}

	var last Result[T]
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Fail[T](err)
		}

		last = op(ctx)
		if last.OK() {
			return last
		}
		if p.Retryable != nil && !p.Retryable(last.Err) {
			return last
		}
		if attempt >= p.MaxRetries {
			return last
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return Fail[T](err)
		}
	}
}

// Chain runs stages in order and returns the first success. When every
// stage fails, the result carries the joined stage errors so the caller
// can classify any of them with errors.Is.
func Chain[T any](ctx context.Context, stages ...func(context.Context) Result[T]) Result[T] {
	var errs []error
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return Fail[T](err)
		}
		r := stage(ctx)
		if r.OK() {
			return r
		}
		errs = append(errs, r.Err)
	}
	if len(errs) == 0 {
		return Fail[T](errors.New("recovery: empty chain"))
	}
	return Fail[T](errors.Join(errs...))
}

// timerSleep waits for d or until the context is canceled.
func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
