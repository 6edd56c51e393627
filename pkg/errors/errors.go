package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Business-rule failures are recoverable and reported verbatim to the caller.
// ErrInternal marks a storage or transaction failure: the operation did not happen.
var (
	ErrInvalidInput     = New("INVALID_INPUT", http.StatusBadRequest, "invalid input")
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrDuplicateKey     = New("DUPLICATE_KEY", http.StatusConflict, "duplicate key")
	ErrDuplicateSignup  = New("DUPLICATE_SIGNUP", http.StatusConflict, "member already signed up for class")
	ErrCapacityExceeded = New("CAPACITY_EXCEEDED", http.StatusUnprocessableEntity, "class is full")
	ErrAlreadyAssigned  = New("ALREADY_ASSIGNED", http.StatusConflict, "class already has a trainer assigned")
	ErrConflict         = New("CONFLICT", http.StatusConflict, "conflict")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrCacheMiss is returned by cache lookups that found nothing.
	ErrCacheMiss = errors.New("cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsKind reports whether err carries the same code as kind.
func IsKind(err error, kind *Error) bool {
	if err == nil || kind == nil {
		return false
	}
	return FromError(err).Code == kind.Code
}
