package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when an entity or value fails structural
	// validation. It is usually wrapped with a more specific message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed or nil.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a status value is outside the
	// entity's vocabulary.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrBusinessRule is returned when structurally valid input violates a
	// business rule, for example an illegal status transition.
	ErrBusinessRule = errors.New("business rule violation")

	// ErrUnauthorized is returned when an operation is not permitted for the
	// caller.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a validation failure for a single field.
// It wraps ErrValidation (or a more specific sentinel) so callers can use
// errors.Is to detect the error kind while still reporting the field.
type ValidationError struct {
	Field   string // the offending field, empty when not field-specific
	Message string // human-readable description
	Err     error  // wrapped sentinel, usually ErrValidation
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped sentinel alongside ErrValidation so errors.Is
// detects both the error kind and the specific failure.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil && e.Err != ErrValidation {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// BusinessRuleError describes a violated business rule, such as an illegal
// status transition. It wraps ErrBusinessRule for errors.Is checks.
type BusinessRuleError struct {
	Rule    string // short identifier of the violated rule
	Message string // human-readable description
}

// Error implements the error interface for BusinessRuleError.
func (e *BusinessRuleError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s", e.Rule, e.Message)
	}
	return e.Message
}

// Unwrap returns ErrBusinessRule so errors.Is(err, ErrBusinessRule) holds.
func (e *BusinessRuleError) Unwrap() error {
	return ErrBusinessRule
}

// NewBusinessRuleError creates a BusinessRuleError for the given rule.
func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}
