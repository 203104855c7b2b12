package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrTerminalState is returned when a review item has already been
	// confirmed or discarded and the requested operation would mutate it.
	ErrTerminalState = errors.New("review item is in a terminal state")
	// ErrInvalidTransition is returned for a status change that is not in the
	// transition table (e.g. a recording that is not pending being enqueued).
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrIntegrity signals a broken audit hash chain. Write paths that depend
	// on the chain refuse to proceed once it is raised.
	ErrIntegrity = errors.New("audit chain integrity violation")
	// ErrPermanent marks a pipeline failure that must not be retried.
	ErrPermanent = errors.New("permanent failure")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// PrefixFieldErrors returns errs with prefix prepended to every field path,
// e.g. "categories[0]" + "systolic_bp" -> "categories[0].systolic_bp".
func PrefixFieldErrors(prefix string, errs []FieldError) []FieldError {
	out := make([]FieldError, len(errs))
	for i, fe := range errs {
		out[i] = FieldError{Field: prefix + "." + fe.Field, Message: fe.Message}
	}
	return out
}
