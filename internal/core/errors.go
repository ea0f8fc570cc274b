package core

import "errors"

// ErrNotFound is returned when a row does not exist or belongs to a
// different user. The two cases are deliberately indistinguishable so that
// lookups never leak whether another user's row exists.
var ErrNotFound = errors.New("not found")

// ValidationError describes a field-level validation failure. It is always
// recoverable; callers surface the message back to the user.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
