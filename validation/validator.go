package validation

import (
	"strings"

	"github.com/kbukum/authgate/errors"
)

// FieldError names a field and what is wrong with it. It never carries the
// submitted value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field errors across several checks.
type Validator struct {
	fields []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.fields) > 0 }

// Errors returns the recorded failures in check order.
func (v *Validator) Errors() []FieldError { return v.fields }

// Present fails when value is empty. Whitespace counts as a value.
func (v *Validator) Present(field, value string) *Validator {
	if value == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Validate folds the recorded failures into a single INVALID_INPUT error,
// or returns nil when every check passed.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	parts := make([]string, 0, len(v.fields))
	for _, f := range v.fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", v.fields)
}
