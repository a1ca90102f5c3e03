package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// MissingField indicates a required body field was absent
	MissingField ErrorCode = "MISSING_FIELD"
	// InvalidType indicates a body field had the wrong JSON type
	InvalidType ErrorCode = "INVALID_TYPE"
	// InvalidBody indicates the request body was not a JSON object
	InvalidBody ErrorCode = "INVALID_BODY"
	// Conflict indicates a case-insensitively equal value is already stored
	Conflict ErrorCode = "CONFLICT"
	// NotFound indicates no stored value matched
	NotFound ErrorCode = "NOT_FOUND"
	// InvalidFilter indicates a malformed or contradictory filter
	InvalidFilter ErrorCode = "INVALID_FILTER"
	// UnparsableQuery indicates the keyword filter recognised nothing
	UnparsableQuery ErrorCode = "UNPARSABLE_QUERY"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// RegistryError carries a stable code, a caller-facing message and an optional cause.
type RegistryError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a RegistryError without a cause
func New(code ErrorCode, message string) *RegistryError {
	return &RegistryError{Code: code, Message: message}
}

// Newf creates a RegistryError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RegistryError {
	return &RegistryError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a RegistryError around an underlying error
func Wrap(code ErrorCode, message string, cause error) *RegistryError {
	return &RegistryError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RegistryError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *RegistryError) WithDetails(details interface{}) *RegistryError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first RegistryError in err's chain,
// or InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var re *RegistryError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
