package remote

import (
	"errors"
	"fmt"
)

// UnavailableError means the service could not be reached: connection failure
// or timeout, surfaced only after the retry budget is exhausted.
type UnavailableError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable after %d attempts: %v", e.Service, e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// StatusError means the service responded with a non-success status. It is
// never retried; the status and body are kept for diagnostics.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsStatus reports whether err is (or wraps) a StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
