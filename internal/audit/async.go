package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Async decouples audit publishing from the request path. Publish returns
// immediately; delivery happens on a detached goroutine and a delivery
// failure is logged, never surfaced to the pipeline.
type Async struct {
	inner   Publisher
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(inner Publisher, logger *slog.Logger) *Async {
	return &Async{inner: inner, logger: logger, timeout: 5 * time.Second}
}

func (a *Async) Publish(ctx context.Context, header Header, events ...Event) error {
	// Detach from the request context so an already-answered request does
	// not cancel its own audit trail.
	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()
		if err := a.inner.Publish(ctx, header, events...); err != nil {
			a.logger.Error("audit publish failed",
				"correlation_id", header.CorrelationID,
				"error", err.Error(),
			)
		}
	}()
	return nil
}

// Drain blocks until all in-flight publishes finish. Called on shutdown.
func (a *Async) Drain() {
	a.wg.Wait()
}
