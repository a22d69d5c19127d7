package domain

import (
	"errors"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")

	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")

	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError reports per-field failures. It unwraps to ErrInvalidInput,
// or to ErrDuplicateEmail when the failure is a uniqueness conflict.
type ValidationError struct {
	Message     string
	FieldErrors map[string]string
	kind        error
}

func NewValidationError(fieldErrors map[string]string) *ValidationError {
	return &ValidationError{Message: "Validation Error", FieldErrors: fieldErrors, kind: ErrInvalidInput}
}

func NewDuplicateEmailError(message, fieldMessage string) *ValidationError {
	return &ValidationError{
		Message:     message,
		FieldErrors: map[string]string{"email": fieldMessage},
		kind:        ErrDuplicateEmail,
	}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error {
	if e.kind == nil {
		return ErrInvalidInput
	}
	return e.kind
}

// OwnershipError is returned when an authenticated user touches a task they do not own.
type OwnershipError struct {
	Action string // access, update, delete
}

func (e *OwnershipError) Error() string {
	return "Not authorized to " + e.Action + " this task"
}

func (e *OwnershipError) Unwrap() error { return ErrForbidden }
