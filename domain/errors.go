package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound  ErrorCode = "NOT_FOUND"
	ErrCodeInvalid   ErrorCode = "INVALID"
	ErrCodeType      ErrorCode = "TYPE"
	ErrCodeMalformed ErrorCode = "MALFORMED"
	ErrCodeInternal  ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. TaskID is populated for
// not-found errors so callers can report the offending identifier.
type Error struct {
	Code    ErrorCode
	Message string
	TaskID  int
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

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewTaskNotFound builds a not-found error carrying the requested id.
func NewTaskNotFound(id int) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("task %d not found", id),
		TaskID:  id,
	}
}

// NewTypeError reports a field supplied with an incompatible shape.
func NewTypeError(message string) *Error {
	return &Error{Code: ErrCodeType, Message: message}
}

// NewMalformedRecord reports an unreadable persisted record. Load fails as
// a whole; there is no partial recovery.
func NewMalformedRecord(message string, err error) *Error {
	return &Error{Code: ErrCodeMalformed, Message: message, Err: err}
}

// Common domain errors.
var (
	ErrEmptyTitle = NewError(ErrCodeInvalid, "task title must not be empty")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// NotFoundID extracts the task id from a not-found error.
func NotFoundID(err error) (int, bool) {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code == ErrCodeNotFound {
		return dErr.TaskID, true
	}
	return 0, false
}
