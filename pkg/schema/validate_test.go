package schema

import (
	"errors"
	"testing"
)

func trialSchema() Schema {
	return Schema{
		"stimuli":        Slice(String()),
		"timing_cycle":   Optional(Int()),
		"canvas_size":    Optional(Pair(Int())),
		"occlude_center": Optional(Bool()),
		"data":           Optional(Map()),
	}
}

func TestValidate_Success(t *testing.T) {
	data := map[string]any{
		"stimuli":        []any{"a.png", "b.png"},
		"timing_cycle":   float64(1000), // from JSON
		"canvas_size":    []any{400, 400},
		"occlude_center": false,
		"data":           map[string]any{"block": 1},
	}

	if err := Validate(trialSchema(), data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_OptionalFieldsMayBeAbsent(t *testing.T) {
	data := map[string]any{
		"stimuli": []string{"a.png"},
	}

	if err := Validate(trialSchema(), data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_NullOptionalIsAbsent(t *testing.T) {
	data := map[string]any{
		"stimuli":      []string{"a.png"},
		"timing_cycle": nil,
	}

	if err := Validate(trialSchema(), data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(trialSchema(), map[string]any{})
	if err == nil {
		t.Fatal("Validate() should return error for missing field")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 1 {
		t.Fatalf("Validate() = %d errors, want 1", len(aggr.Errors))
	}

	var ve *ValidationError
	if !errors.As(aggr.Errors[0], &ve) {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}
	if ve.Key != "stimuli" || ve.Reason != "required" {
		t.Errorf("got %q/%q, want stimuli/required", ve.Key, ve.Reason)
	}
}

func TestValidate_CollectsAllErrorsSorted(t *testing.T) {
	data := map[string]any{
		"stimuli":        "a.png",
		"timing_cycle":   12.5,
		"canvas_size":    []any{400},
		"occlude_center": "yes",
	}

	err := Validate(trialSchema(), data)
	fields := FieldErrors(err)
	if len(fields) != 4 {
		t.Fatalf("FieldErrors() = %v, want 4 entries", fields)
	}

	errs := ValidationErrors(err)
	want := []string{"canvas_size", "occlude_center", "stimuli", "timing_cycle"}
	for i, e := range errs {
		if got := e.(*ValidationError).Key; got != want[i] {
			t.Errorf("error %d key = %q, want %q", i, got, want[i])
		}
	}
}

func TestValidationErrors_Wrapped(t *testing.T) {
	inner := &AggregateError{Errors: []error{&ValidationError{Key: "x", Reason: "bad"}}}
	wrapped := errors.Join(errors.New("context"), inner)

	if got := ValidationErrors(wrapped); len(got) != 1 {
		t.Errorf("ValidationErrors() = %v, want 1 error", got)
	}
	if got := ValidationErrors(errors.New("plain")); got != nil {
		t.Errorf("ValidationErrors(plain) = %v, want nil", got)
	}
}

func TestAggregateError_Message(t *testing.T) {
	single := &AggregateError{Errors: []error{&ValidationError{Key: "a", Reason: "required"}}}
	if got := single.Error(); got != `field "a": required` {
		t.Errorf("single message = %q", got)
	}

	multi := &AggregateError{Errors: []error{
		&ValidationError{Key: "a", Reason: "required"},
		&ValidationError{Key: "b", Reason: "must be positive", Value: -1},
	}}
	want := "2 validation errors:\n  1. field \"a\": required\n  2. field \"b\": must be positive (got -1)"
	if got := multi.Error(); got != want {
		t.Errorf("multi message = %q, want %q", got, want)
	}
}
