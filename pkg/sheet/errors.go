package sheet

import (
	"errors"
	"fmt"
)

// StoreError represents a transport or provider failure talking to a store.
type StoreError struct {
	Provider  string // Store provider (e.g., "google", "local")
	Op        string // Operation that failed (e.g., "append", "read")
	Retryable bool   // Whether the same call may succeed later
	Err       error  // Underlying error
}

func (e *StoreError) Error() string {
	retryability := "permanent"
	if e.Retryable {
		retryability = "retryable"
	}
	return fmt.Sprintf("%s store error (%s, %s): %v", e.Provider, e.Op, retryability, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error.
func NewStoreError(provider, op string, retryable bool, err error) *StoreError {
	return &StoreError{
		Provider:  provider,
		Op:        op,
		Retryable: retryable,
		Err:       err,
	}
}

// IsRetryable returns true if err wraps a retryable StoreError.
func IsRetryable(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}
	return false
}
