package models

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound              = "NOT_FOUND"
	CodeConstraintViolation   = "CONSTRAINT_VIOLATION"
	CodeConnectionUnavailable = "CONNECTION_UNAVAILABLE"
	CodeValidation            = "VALIDATION_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
)

// Sentinels for errors.Is; any AppError with the same code matches.
var (
	ErrNotFound    = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrConstraint  = &AppError{Code: CodeConstraintViolation, Message: "constraint violation"}
	ErrUnavailable = &AppError{Code: CodeConnectionUnavailable, Message: "connection unavailable"}
	ErrValidation  = &AppError{Code: CodeValidation, Message: "validation failed"}
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the AppError code in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewConstraintError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConstraintViolation,
		Message: message,
		Err:     err,
	}
}

func NewUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeConnectionUnavailable,
		Message: "database unavailable",
		Err:     err,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}
