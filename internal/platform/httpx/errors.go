// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Error taxonomy shared by middleware and handlers.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
)

// Error carries a user-facing message alongside its taxonomy class and an
// optional diagnostic cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Is reports whether target is the taxonomy class of e.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Cause }

// NotFound builds a NotFound error with the given message.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// BadRequest builds a BadRequest error; cause may be nil.
func BadRequest(message string, cause error) *Error {
	return &Error{Kind: ErrBadRequest, Message: message, Cause: cause}
}

// Forbidden builds a Forbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// Unauthorized builds an Unauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// RespondError maps an error onto the taxonomy and writes the JSON envelope.
// Authorization failures never carry the underlying error detail.
func RespondError(w http.ResponseWriter, err error) {
	var herr *Error
	if !errors.As(err, &herr) {
		Fail(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	switch herr.Kind {
	case ErrUnauthorized:
		Message(w, http.StatusUnauthorized, herr.Message)
	case ErrForbidden:
		Message(w, http.StatusForbidden, herr.Message)
	case ErrNotFound:
		Fail(w, http.StatusNotFound, herr.Message, herr.Cause)
	case ErrBadRequest:
		Fail(w, http.StatusBadRequest, herr.Message, herr.Cause)
	default:
		Fail(w, http.StatusInternalServerError, herr.Message, herr.Cause)
	}
}

// StatusOf returns the HTTP status RespondError would write for err.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
