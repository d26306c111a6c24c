package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record id does not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is the sentinel every ValidationError unwraps to.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned for a backwards status change without override.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError describes a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
