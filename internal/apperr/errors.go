// Package apperr defines the error kinds shared by every module.
// Each error carries a message that is safe to show to an operator.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrNotAvailable = errors.New("not available")
	ErrMismatch     = errors.New("mismatch")
	ErrValidation   = errors.New("validation failed")
)

// Error pairs an error kind with a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

func Duplicate(format string, args ...interface{}) error {
	return newf(ErrDuplicate, format, args...)
}

func NotAvailable(format string, args ...interface{}) error {
	return newf(ErrNotAvailable, format, args...)
}

func Mismatch(format string, args ...interface{}) error {
	return newf(ErrMismatch, format, args...)
}

func Validation(format string, args ...interface{}) error {
	return newf(ErrValidation, format, args...)
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotAvailable):
		return http.StatusConflict
	case errors.Is(err, ErrMismatch), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for err. Errors that are not
// *Error are reported generically so storage details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
