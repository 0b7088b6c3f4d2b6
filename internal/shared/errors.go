package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by the tag store, artwork store, and remote client.
// Cancellation is deliberately absent: a cancelled operation yields an empty
// result, never an error.
var (
	// ErrNotFound means the path is missing or the file could not be opened.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported means the container is unrecognized or malformed, or a
	// dialect constraint was violated (such as a disallowed cover MIME type).
	ErrUnsupported = errors.New("unsupported")

	// ErrPartialWrite means some but not all fields of a multi-field write
	// succeeded. Fields already written are not rolled back.
	ErrPartialWrite = errors.New("partial write")

	// ErrWaitTimeout means the bounded wait around a remote call reached its
	// ceiling before the worker finished.
	ErrWaitTimeout = errors.New("remote call timed out")
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
}

// IsRetryableHTTPError checks if an HTTP error should be retried
func IsRetryableHTTPError(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusRequestTimeout,    // 408
		http.StatusTooManyRequests,    // 429
		http.StatusBadGateway,         // 502
		http.StatusServiceUnavailable, // 503
		http.StatusGatewayTimeout:     // 504
		return true
	}
	return false
}
