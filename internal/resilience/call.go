package resilience

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy bounds the retry loop for transport failures. Attempts counts
// the initial call, so MaxAttempts of 3 means at most two retries.
type RetryPolicy struct {
	MaxAttempts int
	Wait        time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Wait <= 0 {
		p.Wait = 100 * time.Millisecond
	}
	return p
}

// Options tunes a single guarded call.
type Options struct {
	// Deadline bounds each individual attempt.
	Deadline time.Duration
	Retry    RetryPolicy
}

// Caller bundles the shared collaborators of guarded calls. One Caller is
// shared by all dependencies of an engine instance.
type Caller struct {
	Registry *Registry
	Diag     *DiagnosticHandler
	Logger   *slog.Logger
}

// Invoke runs remote under the named breaker with per-attempt deadline,
// retry on transport failure, and fallback once the budget is exhausted or
// the breaker is open. The second result reports whether the value came
// from the fallback. Non-transport errors propagate immediately and are
// neither retried nor counted against the breaker.
func Invoke[T any](ctx context.Context, c *Caller, dependency string, opts Options, remote func(context.Context) (T, error), fallback func() T) (T, bool, error) {
	var zero T
	retry := opts.Retry.withDefaults()
	breaker := c.Registry.Breaker(dependency)

	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		if !breaker.Allow() {
			c.Logger.Warn("breaker open, serving fallback",
				"dependency", dependency,
				"state", breaker.State().String(),
			)
			return fallback(), true, nil
		}

		value, err := callOnce(ctx, opts.Deadline, remote)
		if err == nil {
			breaker.RecordSuccess()
			return value, false, nil
		}

		// The parent being done takes precedence over per-attempt outcomes.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, false, ctxErr
		}

		failure, transport := AsFailure(err)
		if !transport {
			return zero, false, err
		}
		breaker.RecordFailure()
		c.Diag.Observe(dependency, failure)

		if attempt < retry.MaxAttempts {
			if err := sleep(ctx, retry.Wait); err != nil {
				return zero, false, err
			}
		}
	}

	c.Logger.Warn("retry budget exhausted, serving fallback",
		"dependency", dependency,
		"attempts", retry.MaxAttempts,
	)
	return fallback(), true, nil
}

func callOnce[T any](ctx context.Context, deadline time.Duration, remote func(context.Context) (T, error)) (T, error) {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}
	return remote(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
