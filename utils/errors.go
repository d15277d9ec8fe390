package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by the store when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by the store on a unique index violation.
	ErrDuplicate = errors.New("duplicate key")
)

// AppError is an error with an HTTP status and a client-safe message.
type AppError struct {
	Status  int
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func BadRequest(message string) *AppError { return NewAppError(http.StatusBadRequest, message) }

func Unauthorized(message string) *AppError { return NewAppError(http.StatusUnauthorized, message) }

func Forbidden(message string) *AppError { return NewAppError(http.StatusForbidden, message) }

func NotFound(message string) *AppError { return NewAppError(http.StatusNotFound, message) }

// Conflict maps unique-key clashes to 400, matching the rest of the API.
func Conflict(message string) *AppError { return NewAppError(http.StatusBadRequest, message) }

// Internal wraps an unexpected failure; the cause is logged, never returned.
func Internal(message string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// NotFoundOr turns ErrNotFound into a 404 with msg and wraps anything else
// as a 500.
func NotFoundOr(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return NotFound(msg)
	}
	return Internal("Internal server error", err)
}
