package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeUnknownUser       ErrorCode = "UNKNOWN_USER"
	ErrCodeUnknownTask       ErrorCode = "UNKNOWN_TASK"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeTaskNotComplete   ErrorCode = "TASK_NOT_COMPLETE"
	ErrCodeDuplicateTask     ErrorCode = "DUPLICATE_TASK"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeStorageFault      ErrorCode = "STORAGE_FAULT"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a domain error of the same classification,
// so errors.Is(err, ErrUnknownTask) holds for any UNKNOWN_TASK error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StorageFault classifies a failure of the backing record stores.
func StorageFault(message string, err error) *Error {
	return WrapError(ErrCodeStorageFault, message, err)
}

// Common domain errors.
var (
	ErrUnknownUser        = NewError(ErrCodeUnknownUser, "user does not exist")
	ErrUnknownTask        = NewError(ErrCodeUnknownTask, "task does not exist")
	ErrInvalidTransition  = NewError(ErrCodeInvalidTransition, "status may only advance one step")
	ErrTaskNotComplete    = NewError(ErrCodeTaskNotComplete, "only done tasks can be deleted")
	ErrDuplicateTask      = NewError(ErrCodeDuplicateTask, "task code already in use")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrStorage            = NewError(ErrCodeStorageFault, "storage fault")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the classification of err, or an empty code when err is not a domain error.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ""
}
