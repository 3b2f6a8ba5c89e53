package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrAuthenticationRequired is returned when ctx carries no user id.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrNotFound is returned when a referenced task, backup or user does not exist
	// for the current user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned by Login on a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports input rejected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failed read or write against the record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeError classifies a repository error: missing rows become ErrNotFound,
// everything else a *StoreError.
func storeError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &StoreError{Op: op, Err: err}
}
