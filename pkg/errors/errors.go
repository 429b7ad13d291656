// Package errors defines the coded errors used across template-ci. Every
// failure that reaches the command line carries a stable ErrorCode, and every
// code belongs to one Category so callers can print an accurate diagnostic.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration resolution
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"

	// Package manifest queries
	ErrManifestNotFound ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestQuery    ErrorCode = "MANIFEST_QUERY"
	ErrManifestParse    ErrorCode = "MANIFEST_PARSE"

	// Backend validation against bors-ng
	ErrBorsRead           ErrorCode = "BORS_READ"
	ErrBorsParse          ErrorCode = "BORS_PARSE"
	ErrBadStatusCheck     ErrorCode = "BAD_STATUS_CHECK"
	ErrMissingStatusCheck ErrorCode = "MISSING_STATUS_CHECK"

	// Rendering
	ErrRender         ErrorCode = "RENDER"
	ErrUnknownBackend ErrorCode = "UNKNOWN_BACKEND"

	// FileSystem errors
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrFileRename ErrorCode = "FILE_RENAME"
)

// Category groups error codes by what went wrong.
type Category string

const (
	CategoryUnknown     Category = "unknown"
	CategoryInputAbsent Category = "input-absent"
	CategoryParse       Category = "parse"
	CategoryValidation  Category = "validation"
	CategoryRender      Category = "render"
	CategoryIO          Category = "io"
	CategoryUsage       Category = "usage"
)

var categories = map[ErrorCode]Category{
	ErrInvalidInput:       CategoryUsage,
	ErrUnknownBackend:     CategoryUsage,
	ErrConfigNotFound:     CategoryInputAbsent,
	ErrManifestNotFound:   CategoryInputAbsent,
	ErrConfigParse:        CategoryParse,
	ErrManifestParse:      CategoryParse,
	ErrManifestQuery:      CategoryIO,
	ErrBorsRead:           CategoryValidation,
	ErrBorsParse:          CategoryValidation,
	ErrBadStatusCheck:     CategoryValidation,
	ErrMissingStatusCheck: CategoryValidation,
	ErrRender:             CategoryRender,
	ErrDirCreate:          CategoryIO,
	ErrFileCreate:         CategoryIO,
	ErrFileWrite:          CategoryIO,
	ErrFileRename:         CategoryIO,
}

// CategoryOf returns the category a code belongs to.
func CategoryOf(code ErrorCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryUnknown
}

// Error is a structured error with a code and optional details
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error carrying the same code
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// Category returns the category of the error's code
func (e *Error) Category() Category {
	return CategoryOf(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// GetCategory returns the category of the outermost coded error in the chain
func GetCategory(err error) Category {
	return CategoryOf(GetErrorCode(err))
}

// GetErrorDetails returns the details from an error, or nil
func GetErrorDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
