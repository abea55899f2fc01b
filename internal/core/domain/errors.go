package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrForbidden = errors.New("access forbidden")
var ErrStateConflict = errors.New("state conflict")

// ValidationError carries field-level messages for malformed or missing input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// StateConflictError reports an operation refused because of an entity's current state.
// errors.Is(err, ErrStateConflict) holds for every StateConflictError.
type StateConflictError struct {
	Entity  string
	Current string
	Reason  string
}

func (e *StateConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.Reason, e.Current)
	}
	return fmt.Sprintf("%s already %s", e.Entity, e.Current)
}

func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}
