package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
)

var (
	// ErrNotFound covers unknown usernames, items, reservations, codes and
	// orders. Callers re-prompt.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed operator or guest input.
	ErrValidation = errors.New("invalid input")

	// ErrConflict marks a key that is already in use.
	ErrConflict = errors.New("already exists")

	// ErrLockedOut is matched by *LockedOutError.
	ErrLockedOut = errors.New("account locked")

	// ErrStoreUnavailable aborts the current operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// LockedOutError carries the instant the lockout expires.
type LockedOutError struct {
	Until time.Time
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("account is locked until %s", e.Until.Local().Format("2006-01-02 15:04:05"))
}

func (e *LockedOutError) Is(target error) bool {
	return target == ErrLockedOut
}

// storeErr maps repository failures onto the service taxonomy.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
}
