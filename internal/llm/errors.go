package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// AuthError indicates a missing or rejected API credential. It is never
// retried; the caller must fix the configuration.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// GenerationError wraps a failed model call after retries are exhausted.
type GenerationError struct {
	Model string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on %s: %v", e.Model, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// isRetryable classifies a provider error. Credential and request-shape
// failures are permanent; rate limits and server-side errors are transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 401, 403, 404:
			return false
		}
		return true
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}

	// Network-level failures with no HTTP status are worth another attempt.
	return true
}
