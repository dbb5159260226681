package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common application errors used across services. Handlers recover these at
// the boundary and turn them into redirects or re-rendered forms; none of
// them escape as unhandled faults.
var (
	ErrInvalidCredentials     = errors.New("INVALID_CREDENTIALS")
	ErrUnauthenticated        = errors.New("UNAUTHENTICATED")
	ErrNotFound               = errors.New("NOT_FOUND")
	ErrPersistenceUnavailable = errors.New("PERSISTENCE_UNAVAILABLE")
)

// ValidationError carries field-level validation messages for form re-render.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError over the given field messages.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "VALIDATION_FAILED"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "VALIDATION_FAILED: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
