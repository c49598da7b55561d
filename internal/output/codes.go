// Package output provides JSON/styled output formatting and error handling.
package output

// Exit codes returned by the CLI process.
const (
	ExitOK           = 0  // Success
	ExitUsage        = 1  // Invalid arguments or flags
	ExitNotFound     = 2  // Resource not found
	ExitUnauthorized = 3  // Session missing, expired, or rejected
	ExitForbidden    = 4  // Access denied
	ExitNetwork      = 6  // Connection/DNS error
	ExitAPI          = 7  // Server returned an error
	ExitMalformed    = 8  // Server returned an undecodable body
	ExitNoSession    = 9  // Business-scoped call without a stored session
	ExitValidation   = 10 // Input rejected before sending
	ExitTimeout      = 11 // Request deadline exceeded
)

// Error codes for the JSON envelope.
const (
	CodeUsage        = "usage"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNetwork      = "network"
	CodeAPI          = "api_error"
	CodeMalformed    = "malformed_response"
	CodeNoSession    = "no_session"
	CodeValidation   = "validation"
	CodeTimeout      = "timeout"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeUnauthorized:
		return ExitUnauthorized
	case CodeForbidden:
		return ExitForbidden
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	case CodeMalformed:
		return ExitMalformed
	case CodeNoSession:
		return ExitNoSession
	case CodeValidation:
		return ExitValidation
	case CodeTimeout:
		return ExitTimeout
	default:
		return ExitAPI
	}
}
