package kambam

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials reports a PIN that does not match the stored one.
	ErrInvalidCredentials = errors.New("incorrect pin")

	// ErrNotSignedIn reports an operation that needs an active session.
	ErrNotSignedIn = errors.New("no active session")

	// ErrForbidden reports an operation the current session may not perform.
	ErrForbidden = errors.New("operation not allowed for this user")

	// ErrLastColumn reports an attempt to delete the only remaining column.
	ErrLastColumn = errors.New("cannot delete the last column")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
