package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced row does not exist or does
	// not belong to the referenced parent.
	ErrNotFound = errors.New("not found")

	// ErrOverpayment is returned when a ledger mutation would make the total
	// paid exceed the amount currently due.
	ErrOverpayment = errors.New("total paid would exceed amount due")

	// ErrCircularDependency is returned on creation of a multi-cursus
	// reduction whose inverse rule already exists.
	ErrCircularDependency = errors.New("circular reduction dependency")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field errors. It is always raised
// before any write.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
