package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the platform error taxonomy. Callers classify with
// errors.Is and wrap with the *f helpers so context is preserved.
var (
	// ErrValidation covers malformed requests, empty documents and unknown
	// certifications. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrThrottled means the embedding/generation service rate-limited us.
	// Retryable with backoff.
	ErrThrottled = errors.New("throttled by upstream service")

	// ErrNotFound means no matching content exists for a query or quiz request.
	ErrNotFound = errors.New("no matching content")

	// ErrDownstream means the index or generative service is unreachable.
	// Surfaced after bounded retries, never silently swallowed.
	ErrDownstream = errors.New("downstream service unavailable")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func Throttledf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrThrottled)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Downstreamf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDownstream)...)
}

// Retryable reports whether an ingestion-side error should be retried.
func Retryable(err error) bool {
	return errors.Is(err, ErrThrottled) || errors.Is(err, ErrDownstream)
}
