package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no invoice matches the given id or number.
	ErrNotFound = errors.New("invoice not found")

	// ErrInvalidTransition is returned when a lifecycle operation is not
	// permitted from the invoice's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPersistence is returned when reading or writing the ledger fails.
	ErrPersistence = errors.New("ledger persistence failure")
)

// ValidationError reports bad input at invoice creation time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
