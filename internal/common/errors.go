// Package common defines shared sentinel errors used across the server
// layers of taskkeeper. Callers should use errors.Is / errors.As to match them.
package common

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrExportDisabled = errors.New("export is not configured")

	// Auth errors.
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
)

// ValidationError reports bad input. Fields maps a request field name to a
// human-readable problem; Message summarises the failure.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError with an empty field map.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string]string{}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Add records a problem for field. The first problem reported for a field wins.
func (e *ValidationError) Add(field, problem string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = problem
	}
}

// OrNil returns e when at least one field problem was recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
