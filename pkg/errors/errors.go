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

// Token and credential errors. Every validation failure crossing a component
// boundary is one of these; raw jwt parsing errors never escape.
var (
	ErrTokenMissing      = New("TOKEN_MISSING", http.StatusUnauthorized, "authorization token required")
	ErrTokenMalformed    = New("TOKEN_MALFORMED", http.StatusUnauthorized, "token is malformed or has an invalid signature")
	ErrTokenExpired      = New("TOKEN_EXPIRED", http.StatusUnauthorized, "token has expired")
	ErrTokenTypeMismatch = New("TOKEN_TYPE_MISMATCH", http.StatusUnauthorized, "token type does not match the requested operation")
	ErrTokenRevoked      = New("TOKEN_REVOKED", http.StatusUnauthorized, "token has been revoked")
	ErrSessionSuperseded = New("SESSION_SUPERSEDED", http.StatusUnauthorized, "session superseded by a newer login")

	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrAccountDisabled    = New("ACCOUNT_DISABLED", http.StatusForbidden, "account is disabled")
	ErrAccountLocked      = New("ACCOUNT_LOCKED", http.StatusForbidden, "account is locked")
)

// Generic errors shared across services.
var (
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
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

// Is reports whether err carries the same error code as target.
func Is(err error, target *Error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return target != nil && e.Code == target.Code
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
