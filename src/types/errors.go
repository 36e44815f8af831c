package types

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports a failed state-machine precondition. Reason carries
// the specific precondition that failed. Never retried.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError covers missing rows and tenant-scoping failures alike, so a
// caller cannot distinguish another tenant's resource from a nonexistent one.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConcurrencyError wraps a lost race against a concurrent writer (a guarded
// status update that matched zero rows, or a serialization failure from the
// database). Callers retry the operation once before surfacing it.
type ConcurrencyError struct {
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrent update detected: %s", e.Err.Error())
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

func NewConcurrencyError(format string, args ...any) *ConcurrencyError {
	return &ConcurrencyError{Err: fmt.Errorf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsConcurrency(err error) bool {
	var ce *ConcurrencyError
	return errors.As(err, &ce)
}
