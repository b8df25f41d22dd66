package domain

import (
	"errors"
	"testing"
)

func TestValidationError_Unwrap(t *testing.T) {
	t.Parallel()

	err := NewValidationError("command_text", "required")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should unwrap to ErrValidation")
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	single := NewValidationError("pattern", "invalid regex")
	if got := single.Error(); got != "validation: pattern — invalid regex" {
		t.Errorf("single-field message = %q", got)
	}

	multi := &ValidationError{Errors: []FieldError{
		{Field: "username", Message: "required"},
		{Field: "role", Message: "invalid"},
	}}
	if got := multi.Error(); got != "validation: 2 errors" {
		t.Errorf("multi-field message = %q", got)
	}
}
