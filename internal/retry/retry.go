// Package retry provides the backoff wrapper applied to every external
// model call. Delays grow geometrically; errors that report themselves as
// non-retryable propagate immediately regardless of remaining attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

// retryable is implemented by errors that know whether retrying can help.
type retryable interface {
	Retryable() bool
}

// Policy defines the backoff schedule for one wrapped call.
type Policy struct {
	Attempts    int           // retries after the initial attempt
	InitialWait time.Duration // delay before the first retry
	Multiplier  float64       // growth factor per retry

	// Sleep can be replaced in tests to observe the schedule; nil means a
	// context-aware time.Sleep.
	Sleep func(context.Context, time.Duration) error
}

// DefaultPolicy matches the pipeline-wide model-call policy: five retries
// starting at one second and doubling, ~31s cumulative worst case.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:    5,
		InitialWait: time.Second,
		Multiplier:  2,
	}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
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

// Do runs fn, retrying per the policy. The last error is returned once
// attempts are exhausted. Non-retryable errors and context cancellation
// short-circuit the schedule.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T
	wait := p.InitialWait

	for attempt := 0; ; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}

		var r retryable
		if errors.As(err, &r) && !r.Retryable() {
			return zero, err
		}
		if attempt >= p.Attempts {
			return zero, err
		}

		if serr := p.sleep(ctx, wait); serr != nil {
			return zero, serr
		}
		wait = time.Duration(float64(wait) * p.Multiplier)
	}
}
