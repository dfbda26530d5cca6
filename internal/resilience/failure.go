// Package resilience wraps outbound unary calls with a deadline, a named
// circuit breaker, retry, and a fallback response. Transport failures are
// absorbed here; business declines never enter this package.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Category classifies a transport-layer failure. The values mirror the
// status taxonomy of the backend RPC layer.
type Category string

const (
	CategoryUnavailable       Category = "unavailable"
	CategoryDeadlineExceeded  Category = "deadline_exceeded"
	CategoryNotFound          Category = "not_found"
	CategoryPermissionDenied  Category = "permission_denied"
	CategoryResourceExhausted Category = "resource_exhausted"
	CategoryUnimplemented     Category = "unimplemented"
	CategoryDataLoss          Category = "data_loss"
	CategoryInternal          Category = "internal"
)

// Failure is a transport-layer error from a backend dependency. Anything
// that is not a Failure is treated as a programming error and propagated
// instead of retried.
type Failure struct {
	Category Category
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("transport failure: %s", f.Category)
	}
	return fmt.Sprintf("transport failure (%s): %v", f.Category, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func NewFailure(category Category, err error) *Failure {
	return &Failure{Category: category, Err: err}
}

// AsFailure reports whether err is a transport failure, normalizing a raw
// context deadline into CategoryDeadlineExceeded.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewFailure(CategoryDeadlineExceeded, err), true
	}
	return nil, false
}

// DiagnosticHandler routes transport failures to per-category observers.
// It never influences control flow; it exists for operational visibility.
type DiagnosticHandler struct {
	logger   *slog.Logger
	handlers map[Category]func(dependency string, failure *Failure)
}

func NewDiagnosticHandler(logger *slog.Logger) *DiagnosticHandler {
	h := &DiagnosticHandler{
		logger:   logger,
		handlers: make(map[Category]func(string, *Failure)),
	}
	for _, category := range []Category{
		CategoryUnavailable,
		CategoryDeadlineExceeded,
		CategoryNotFound,
		CategoryPermissionDenied,
		CategoryResourceExhausted,
		CategoryUnimplemented,
		CategoryDataLoss,
		CategoryInternal,
	} {
		category := category
		h.handlers[category] = func(dependency string, failure *Failure) {
			logger.Warn("backend transport failure",
				"dependency", dependency,
				"category", string(category),
				"error", failure.Error(),
			)
		}
	}
	return h
}

// Register replaces the observer for one category.
func (h *DiagnosticHandler) Register(category Category, fn func(dependency string, failure *Failure)) {
	h.handlers[category] = fn
}

func (h *DiagnosticHandler) Observe(dependency string, failure *Failure) {
	if h == nil || failure == nil {
		return
	}
	if fn, ok := h.handlers[failure.Category]; ok && fn != nil {
		fn(dependency, failure)
		return
	}
	h.logger.Warn("backend transport failure, unmapped category",
		"dependency", dependency,
		"category", string(failure.Category),
		"error", failure.Error(),
	)
}
