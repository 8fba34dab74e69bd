package relay

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnauthorized is returned when no credential declaration row authorizes
// the account, secret and phone combination.
var ErrUnauthorized = errors.New("invalid credentials or phone number")

// ValidationError reports required request fields that were missing or
// empty. No row is written for a request that fails validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "missing required fields"
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// TimeoutError is returned when the relay actor did not complete a row before
// the poll deadline.
type TimeoutError struct {
	Row     int
	Timeout time.Duration

	// LastErr is the last retryable store error seen while polling, if any.
	LastErr error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for row %d", e.Timeout, e.Row)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// IsTimeout returns true if err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
