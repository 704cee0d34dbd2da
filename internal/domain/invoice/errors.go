package invoice

import (
	"errors"
	"fmt"
)

var (
	// ErrInvoiceNotFound is returned when an invoice is not found
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrDuplicateInvoice is returned when generating an invoice for a
	// lease/billing-period pair that already has one and force is not set
	ErrDuplicateInvoice = errors.New("invoice already exists for lease and billing period")

	// ErrInvalidInvoiceStatus is returned on an invalid status transition
	ErrInvalidInvoiceStatus = errors.New("invalid invoice status")
)

// ValidationError represents an error that occurs during invoice validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}
