// Package apperr provides status-tagged errors shared across layers.
// Services and validators return *Error; the HTTP layer maps it onto
// the response status and the client-visible message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error carrying an HTTP status code.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// New creates a status-tagged error.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Newf creates a status-tagged error with a formatted message.
func Newf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Internal creates a 500 error.
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From returns err as *Error, wrapping untagged errors as 500.
// A nil err returns nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err.Error())
}

// StatusOf returns the HTTP status carried by err, or 500 for
// untagged errors.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
