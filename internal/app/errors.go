package app

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
	ErrInvalidPreference = errors.New("invalid preference key")
)

// ValidationError carries inline, per-field messages for a rejected form.
// Keys are the wire field names ("title", "end_date").
type ValidationError struct {
	Fields map[string]string
}

// Error joins the field messages in key order.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
