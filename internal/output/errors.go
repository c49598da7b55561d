package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for common cases.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		HTTPStatus: 404,
	}
}

// ErrUnauthorized is returned when the backend rejects the session.
// The stored session has already been cleared by the time callers see it.
func ErrUnauthorized(cause error) *Error {
	return &Error{
		Code:       CodeUnauthorized,
		Message:    "Unauthorized - Please login again",
		Hint:       "Run: ringlify auth login",
		HTTPStatus: 401,
		Cause:      cause,
	}
}

func ErrForbidden(msg string) *Error {
	return &Error{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: 403,
	}
}

func ErrNetwork(cause error) *Error {
	return &Error{
		Code:    CodeNetwork,
		Message: "Network error",
		Hint:    cause.Error(),
		Cause:   cause,
	}
}

func ErrTimeout(cause error) *Error {
	return &Error{
		Code:    CodeTimeout,
		Message: "Request timed out",
		Hint:    "Raise --timeout or check the backend",
		Cause:   cause,
	}
}

func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}

// ErrMalformed reports a 2xx response whose body could not be decoded.
func ErrMalformed(status int, cause error) *Error {
	return &Error{
		Code:       CodeMalformed,
		Message:    "Malformed response from server",
		Hint:       cause.Error(),
		HTTPStatus: status,
		Cause:      cause,
	}
}

// ErrNoSession reports a business-scoped call made without a stored business id.
func ErrNoSession() *Error {
	return &Error{
		Code:    CodeNoSession,
		Message: "No business ID found",
		Hint:    "Run: ringlify auth login",
	}
}

func ErrValidation(field, msg string) *Error {
	if field == "" {
		return &Error{Code: CodeValidation, Message: msg}
	}
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s: %s", field, msg),
	}
}

// AsError attempts to convert an error to an *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeAPI,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
