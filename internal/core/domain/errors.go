package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the core returns wraps exactly one of these so the
// transport layer can translate it with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrPermission     = errors.New("permission denied")
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrStorage        = errors.New("storage failure")
)

var (
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: username already registered", ErrConflict)
	ErrAmenityExists = fmt.Errorf("%w: amenity name must be unique", ErrConflict)
	ErrLocationTaken = fmt.Errorf("%w: a place already exists at this location", ErrConflict)
)

var (
	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrPlaceNotFound   = fmt.Errorf("%w: place not found", ErrNotFound)
	ErrAmenityNotFound = fmt.Errorf("%w: amenity not found", ErrNotFound)
	ErrReviewNotFound  = fmt.Errorf("%w: review not found", ErrNotFound)
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrAuthentication)
	ErrUnauthenticated    = fmt.Errorf("%w: missing authentication claims", ErrAuthentication)
	ErrTooManyAttempts    = fmt.Errorf("%w: too many failed login attempts", ErrAuthentication)
)

var ErrSelfReview = fmt.Errorf("%w: user cannot review their own place", ErrPermission)

// Invalid returns a validation error carrying a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Denied returns a permission error carrying a caller-facing message.
func Denied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// StorageFailure marks err as a storage failure for op. Domain errors pass
// through unchanged so a missing record still reads as not found.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// CascadeFailure marks a failed step of a cascading delete. It always wraps
// ErrStorage, even when err is itself a domain error.
func CascadeFailure(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: cascade %s: %w", ErrStorage, step, err)
}

// IsDomainError reports whether err wraps one of the error kinds above.
func IsDomainError(err error) bool {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrPermission, ErrAuthentication, ErrNotFound, ErrStorage} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
