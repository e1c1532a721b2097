// Package apperror defines the error taxonomy shared by the blog client and
// the development API.
//
// Every failure a view or handler needs to react to is one of a handful of
// sentinel errors. Concrete errors are *AppError values that carry a
// human-readable message and unwrap to their sentinel, so callers branch with
// errors.Is and display with err.Error().
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// ErrUnauthenticated means an operation needs a session and there is none.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized means credentials were rejected. It never says whether
	// the username or the password was wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRequestFailed covers every other failed round trip: transport
	// errors, timeouts, 5xx and unexpected status codes.
	ErrRequestFailed = errors.New("request failed")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated returns an AppError for a missing session.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Unauthorized returns the single credential-rejection error. The message is
// fixed so that no caller can leak which half of the credentials was wrong.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "Error: either username or password incorrect",
	}
}

// RequestFailed wraps a transport or server failure. cause is kept for logs
// but is not part of the message shown to users.
func RequestFailed(op string, cause error) *AppError {
	err := ErrRequestFailed
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrRequestFailed, cause)
	}
	return &AppError{
		Err:     err,
		Message: fmt.Sprintf("%s failed, please try again", op),
	}
}
