package domain

import (
	"errors"
	"fmt"
)

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound = errors.New("task not found")

	// Identity errors
	ErrUnauthorized  = errors.New("authentication required")
	ErrInvalidToken  = errors.New("invalid authentication token")
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")

	// Validation errors
	ErrValidation   = errors.New("validation failed")
	ErrEmptyComment = errors.New("comment text is required")
)

// ValidationError names the field that violated a constraint.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
