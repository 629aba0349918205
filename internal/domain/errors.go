package domain

import "fmt"

// ValidationError reports a missing or malformed required input field.
// It fails only the computation it was raised in; independent modules
// keep running.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("validation: missing required field %q", e.Field)
	}
	return fmt.Sprintf("validation: field %q %s", e.Field, e.Reason)
}

// NewValidationError reports a required field as missing.
func NewValidationError(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// DataUnavailableError reports stale or missing collaborator data.
// Callers substitute the documented fallback and lower the output
// confidence instead of aborting.
type DataUnavailableError struct {
	Source   string
	Fallback string
	Err      error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data unavailable from %s (fallback: %s): %v", e.Source, e.Fallback, e.Err)
	}
	return fmt.Sprintf("data unavailable from %s (fallback: %s)", e.Source, e.Fallback)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }
