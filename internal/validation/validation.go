// Package validation holds the field-level validation error type shared by the
// domain entities. Handlers map it to a 422 response with per-field detail.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error carries validation failures keyed by field name.
type Error struct {
	Fields map[string]string
}

// NewError returns an empty validation error. Use Add to record failures and
// Err to collapse to nil when nothing was recorded.
func NewError() *Error {
	return &Error{Fields: map[string]string{}}
}

// Add records a failure message for field.
func (e *Error) Add(field, msg string) {
	e.Fields[field] = msg
}

// Err returns e if any failure was recorded, nil otherwise.
func (e *Error) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsError returns the *Error inside err, or nil if err is not a validation error.
func AsError(err error) *Error {
	if v, ok := err.(*Error); ok {
		return v
	}
	return nil
}
