package access

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for missing or malformed input
	ErrValidation = errors.New("validation error")
	// ErrCodeNotFound is returned when no record carries the presented code
	ErrCodeNotFound = errors.New("access code not found")
	// ErrPropertyScopeMismatch is returned when the caller is not scoped to the code's property
	ErrPropertyScopeMismatch = errors.New("not authorized for this property")
	// ErrCodeSpaceExhausted is returned when no free code was drawn within the allowed attempts
	ErrCodeSpaceExhausted = errors.New("no free access code available")
	// ErrPersistenceConflict is returned when a conditional write found the record already changed
	ErrPersistenceConflict = errors.New("access code was modified concurrently")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
