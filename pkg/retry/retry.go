// Package retry provides a bounded-retry decorator for operations that talk
// to a store or a broker. Call sites wrap the operation explicitly; there is
// no hidden interception.
package retry

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 200 * time.Millisecond
)

// Policy controls how an operation is retried. Only failures matching one of
// the Retryable kinds (via errors.Is) are eligible; everything else
// propagates after the first attempt.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// AttemptTimeout bounds each individual attempt so a hung I/O call
	// cannot pin a worker. Zero disables the per-attempt deadline.
	AttemptTimeout time.Duration

	Retryable []error
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultDelay
	}
	return p
}

func (p Policy) retryable(err error) bool {
	for _, kind := range p.Retryable {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Do invokes op until it succeeds, fails with a non-retryable kind, or the
// attempt budget is spent. The last failure propagates unwrapped so callers
// can still distinguish its kind.
func Do[T any](ctx context.Context, policy Policy, name string, op func(context.Context) (T, error)) (T, error) {
	p := policy.normalized()
	var zero T

	for attempt := 1; ; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}

		start := time.Now()
		result, err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		elapsed := time.Since(start)

		if err == nil {
			if attempt > 1 {
				log.Printf("level=info component=retry op=%s attempt=%d max_attempts=%d elapsed=%s msg=\"succeeded after retry\"", name, attempt, p.MaxAttempts, elapsed)
			}
			return result, nil
		}

		log.Printf("level=warn component=retry op=%s attempt=%d max_attempts=%d elapsed=%s err=%v", name, attempt, p.MaxAttempts, elapsed, err)

		if !p.retryable(err) || attempt >= p.MaxAttempts {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.Delay):
		}
	}
}
