package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession means no user/tenant context could be resolved. The
	// transport answers with a redirect to authentication.
	ErrNoSession = errors.New("no resolvable session")

	// ErrUnauthorized covers role-too-low and wrong-side-of-link failures,
	// distinct from validation failures.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStaleState means a link or contract was no longer in the expected
	// state. The caller should reload.
	ErrStaleState = errors.New("stale state")

	ErrNotFound = errors.New("not found")
)

// ValidationError is a structured, field-tagged failure. Field is empty for
// operation-level validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func validationErrf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
