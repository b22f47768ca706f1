package wallgen

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoCredential is returned when no override, stored or environment API
	// key is available. No request is made in that case.
	ErrNoCredential = errors.New("no API key configured")

	// ErrAllAttemptsFailed is returned when none of the parallel attempts
	// produced an image. It wraps the individual attempt errors.
	ErrAllAttemptsFailed = errors.New("all generation attempts failed")

	// ErrNoImageInResponse marks an attempt whose response carried no image part.
	ErrNoImageInResponse = errors.New("response contained no image")

	// ErrStaleBatch is returned by Session when a newer submission superseded
	// the batch before it finished.
	ErrStaleBatch = errors.New("generation superseded by a newer request")

	ErrNothingSelected = errors.New("no wallpaper selected")
	ErrImageNotFound   = errors.New("wallpaper not found")
	ErrEmptyKey        = errors.New("API key cannot be empty")
)

// ErrStorageNotConfigured is returned when a download is attempted
// without a configured storage backend.
var ErrStorageNotConfigured = errors.New("storage not configured")

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
