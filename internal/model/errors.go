package model

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a malformed import or restore payload.
// The operation that returned it applied nothing.
type ValidationError struct {
	// Field is the path of the offending value ("lists", "settings.soundEnabled", ...).
	// Empty when the payload as a whole is unusable.
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying decoder/schema error, if any.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid data: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid data: %s", e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
