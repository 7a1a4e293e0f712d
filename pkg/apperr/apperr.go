package apperr

import (
	"errors"
	"fmt"
)

// Error codes used across services. REST maps these to HTTP statuses.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyStarted = "ALREADY_STARTED"
	CodeAlreadyExists  = "ALREADY_EXISTS"
	CodeAuthRequired   = "AUTH_REQUIRED"
	CodeForbidden      = "FORBIDDEN"
	CodeValidation     = "VALIDATION_ERROR"
	CodePersistence    = "PERSISTENCE"
)

// AppError is a coded application error. Err, when set, is the underlying
// cause and participates in errors.Is/As chains.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Code returns the code of err if it is (or wraps) an AppError, and
// PERSISTENCE for any other non-nil error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodePersistence
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return Code(err) == code
}
