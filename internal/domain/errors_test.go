package domain

import (
	"errors"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("currency", "required")

	if got := err.Error(); got != "validation: currency: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "eventId", Message: "required"},
		{Field: "currency", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestValidationError_Err(t *testing.T) {
	t.Parallel()

	var collected ValidationError
	if collected.Err() != nil {
		t.Fatal("empty ValidationError should yield nil")
	}
	collected.Add("dateTime", "required")
	if err := collected.Err(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Err() = %v, want ErrValidation", err)
	}

	var nilErr *ValidationError
	if nilErr.Err() != nil {
		t.Fatal("nil ValidationError should yield nil")
	}
}

func TestValidationError_Prefixed(t *testing.T) {
	t.Parallel()

	err := NewValidationError("currency", "required").Prefixed("activities[2].")
	if got := err.Errors[0].Field; got != "activities[2].currency" {
		t.Fatalf("Field = %q", got)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation, ErrConflict, ErrEmptyPosting,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestErrUnknownLineage_IsNotFound(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrUnknownLineage, ErrNotFound) {
		t.Error("ErrUnknownLineage should match ErrNotFound")
	}
	if errors.Is(ErrNotFound, ErrUnknownLineage) {
		t.Error("a plain ErrNotFound is not an unknown lineage")
	}
}
