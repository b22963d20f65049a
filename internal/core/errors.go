package core

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or missing field on a write.
// Recoverable: the API surfaces it to the caller as a 4xx.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ReferenceError reports a write that pointed at a foreign key target
// that does not exist. Recoverable: surfaced to the caller as a 4xx,
// never swallowed by the store.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.ID)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsReference reports whether err is (or wraps) a ReferenceError.
func IsReference(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}
