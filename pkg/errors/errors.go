package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Is matches any AppError carrying the same code, so callers can test
// against the sentinel values below with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrSlotConflict
	ErrPersistence
	ErrInvalidTransition
)

// Sentinels for errors.Is comparisons.
var (
	NotFoundError          = &AppError{Code: ErrNotFound}
	ValidationError        = &AppError{Code: ErrValidation}
	SlotConflictError      = &AppError{Code: ErrSlotConflict}
	PersistenceError       = &AppError{Code: ErrPersistence}
	InvalidTransitionError = &AppError{Code: ErrInvalidTransition}
	ForbiddenError         = &AppError{Code: ErrForbidden}
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Validation reports malformed input: a bad weekly slot, a bad date or a
// non-positive slot duration.
func Validation(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// SlotConflict reports that the requested start time is no longer free.
func SlotConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrSlotConflict,
		Message: message,
		Err:     err,
	}
}

// Persistence wraps a backend failure for the named operation.
func Persistence(op string, err error) *AppError {
	return &AppError{
		Code:    ErrPersistence,
		Message: fmt.Sprintf("failed to %s", op),
		Err:     err,
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("cannot change appointment status from %s to %s", from, to),
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// ErrInternal when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func IsValidation(err error) bool   { return CodeOf(err) == ErrValidation }
func IsSlotConflict(err error) bool { return CodeOf(err) == ErrSlotConflict }
func IsNotFound(err error) bool     { return CodeOf(err) == ErrNotFound }
func IsPersistence(err error) bool  { return CodeOf(err) == ErrPersistence }
