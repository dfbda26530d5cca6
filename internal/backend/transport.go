package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/halcyon-pay/authengine-go/internal/resilience"
)

// doJSON performs one JSON-over-HTTP exchange. Connection errors, timeouts,
// and failure-class status codes come back as *resilience.Failure so the
// caller's retry and breaker machinery engages; a 2xx with an undecodable
// body is a plain error and propagates untouched.
func doJSON[T any](ctx context.Context, client *http.Client, method, url string, body any) (T, error) {
	var out T

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return out, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return out, resilience.NewFailure(resilience.CategoryDeadlineExceeded, err)
		}
		if errors.Is(err, context.Canceled) {
			return out, err
		}
		return out, resilience.NewFailure(resilience.CategoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
		return out, resilience.NewFailure(categoryForStatus(resp.StatusCode), err)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode response from %s: %w", url, err)
	}
	return out, nil
}

func categoryForStatus(status int) resilience.Category {
	switch status {
	case http.StatusServiceUnavailable:
		return resilience.CategoryUnavailable
	case http.StatusGatewayTimeout:
		return resilience.CategoryDeadlineExceeded
	case http.StatusNotFound:
		return resilience.CategoryNotFound
	case http.StatusForbidden:
		return resilience.CategoryPermissionDenied
	case http.StatusTooManyRequests:
		return resilience.CategoryResourceExhausted
	case http.StatusNotImplemented:
		return resilience.CategoryUnimplemented
	case http.StatusInsufficientStorage:
		return resilience.CategoryDataLoss
	default:
		return resilience.CategoryInternal
	}
}
