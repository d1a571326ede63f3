package service

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Handlers map them to responses with
// errors.Is / errors.As; the wrapped cause is kept for logging only.
var (
	// ErrActionFailed means createGig did not produce a usable record.
	ErrActionFailed = errors.New("Action Failed")
	// ErrStore means the store was unreachable or failed a query.
	ErrStore = errors.New("store error")
	// ErrTimeout means the store call exceeded its deadline.
	ErrTimeout = errors.New("store timeout")
)

// ValidationError reports a missing or malformed argument. It is produced
// at the boundary before any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Kind names an error for clients: ValidationError, ActionFailed,
// StoreError, Timeout or Canceled. Unknown errors report as StoreError.
func Kind(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "ValidationError"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	case errors.Is(err, ErrActionFailed):
		return "ActionFailed"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	default:
		return "StoreError"
	}
}

// classify wraps a raw store error in the matching kind. Caller
// cancellation is passed through untouched.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
}
