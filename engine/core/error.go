package core

import "fmt"

// Error codes shared across the engine. They mirror the execution status
// taxonomy plus the configuration-time cycle rejection.
const (
	ErrCodeValidation = "validation_error"
	ErrCodeCycle      = "cycle_error"
	ErrCodeAuth       = "auth_error"
	ErrCodeNetwork    = "network_error"
	ErrCodeTimeout    = "timeout"
	ErrCodeUpstream   = "upstream_error"
	ErrCodeInternal   = "internal_error"
)

// Error is the coded error type carried across engine boundaries. Details
// hold structured context (parameter names, cycle members) so callers can
// fix their configuration without parsing messages.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a coded error wrapping an optional cause. The cause
// message is scrubbed of secret material before being surfaced.
func NewError(cause error, code, message string, details map[string]any) *Error {
	if message == "" && cause != nil {
		message = RedactError(cause)
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
		cause:   cause,
	}
}

// NewErrorf creates a coded error with a formatted message.
func NewErrorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StatusForCode maps an error code to the execution status it produces.
// Cycle errors surface as validation failures when a cyclic configuration
// slips past the write-time check and is only caught at run time.
func StatusForCode(code string) StatusType {
	switch code {
	case ErrCodeValidation, ErrCodeCycle:
		return StatusValidationError
	case ErrCodeAuth:
		return StatusAuthError
	case ErrCodeNetwork:
		return StatusNetworkError
	case ErrCodeTimeout:
		return StatusTimeout
	case ErrCodeUpstream:
		return StatusUpstreamError
	default:
		return StatusValidationError
	}
}
