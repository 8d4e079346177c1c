package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNeedsOnboarding = errors.New("needs onboarding")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage failure")
	ErrTenantCreation  = fmt.Errorf("%w: tenant creation failed", ErrConflict)
)

// ValidationError is a user-correctable input problem on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func Wrap(base, ext error) error {
	if ext == nil {
		return base
	}

	return fmt.Errorf("%w: %w", base, ext)
}

func Wrapf(base error, str string) error {
	return fmt.Errorf("%w: %s", base, str)
}

// Message returns the text that is safe to show to an end user.
// Storage details never leave the process.
func Message(err error) string {
	var v *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &v):
		return v.Message
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrNeedsOnboarding):
		return "needs_onboarding"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrTenantCreation):
		return "could not create organization, try another name"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal error"
	}
}
