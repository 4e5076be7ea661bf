package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the request conflicts with existing ledger state.
var ErrConflict = errors.New("conflict")

// ErrConsistency indicates a detected balance drift. It is reported, never corrected.
var ErrConsistency = errors.New("ledger consistency error")

// ErrRetryable indicates the operation was aborted and fully rolled back
// (timeout, lock contention, serialization failure) and may be retried.
var ErrRetryable = errors.New("operation aborted, retry")

var (
	ErrAccountNotFound  = fmt.Errorf("%w: account", ErrNotFound)
	ErrAccountInactive  = fmt.Errorf("%w: account is inactive", ErrValidation)
	ErrEntryNotFound    = fmt.Errorf("%w: journal entry", ErrNotFound)
	ErrDuplicatePosting = fmt.Errorf("%w: source document already has a posted journal entry", ErrConflict)
	ErrUnbalancedEntry  = fmt.Errorf("%w: journal entry does not balance", ErrValidation)
	ErrDuplicateAccount = fmt.Errorf("%w: account code already exists", ErrConflict)
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}
