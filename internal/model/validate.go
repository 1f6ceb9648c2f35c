package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateProduct checks a Product for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the product is valid.
func ValidateProduct(p *Product) error {
	var ve ValidationError

	name := strings.TrimSpace(p.Name)
	if name == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if len([]rune(name)) > 120 {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "must be 120 characters or fewer"})
	}

	if p.Cost < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "cost",
			Message: fmt.Sprintf("must not be negative, got %v", p.Cost),
		})
	}

	if p.Price != nil && *p.Price < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "price",
			Message: fmt.Sprintf("must not be negative, got %v", *p.Price),
		})
	}

	if p.Stock < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "stock",
			Message: fmt.Sprintf("must not be negative, got %d", p.Stock),
		})
	}

	if len([]rune(p.Description)) > 450 {
		ve.Errors = append(ve.Errors, FieldError{Field: "description", Message: "must be 450 characters or fewer"})
	}

	if p.EnterpriseID == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "enterprise_id", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
