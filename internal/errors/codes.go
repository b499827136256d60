package errors

import (
	"fmt"
)

// ErrorCode classifies failures of the chat pipeline.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a malformed or incomplete request body.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeConfigurationError indicates a required credential or resource is absent.
	ErrCodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeResourceUnavailable indicates a required static asset is unreadable.
	ErrCodeResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"
	// ErrCodeProviderError indicates an upstream model or search call failed.
	ErrCodeProviderError ErrorCode = "PROVIDER_ERROR"
	// ErrCodeMalformedToolInvocation indicates the model requested a tool with
	// unparsable arguments. Handled the same way as ErrCodeProviderError.
	ErrCodeMalformedToolInvocation ErrorCode = "MALFORMED_TOOL_INVOCATION"
	// ErrCodeRateLimitExceeded indicates the per-session rate limit was hit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// ChatError is a structured error carrying one of the pipeline error codes.
type ChatError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ChatError) Unwrap() error {
	return e.Cause
}

// InvalidRequest creates an invalid request error.
func InvalidRequest(msg string) *ChatError {
	return &ChatError{Code: ErrCodeInvalidRequest, Message: msg}
}

// ConfigurationError creates a configuration error.
func ConfigurationError(msg string) *ChatError {
	return &ChatError{Code: ErrCodeConfigurationError, Message: msg}
}

// ResourceUnavailable creates a resource unavailable error.
func ResourceUnavailable(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeResourceUnavailable, Message: msg, Cause: cause}
}

// ProviderError creates a provider error.
func ProviderError(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeProviderError, Message: msg, Cause: cause}
}

// MalformedToolInvocation creates a malformed tool invocation error.
func MalformedToolInvocation(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeMalformedToolInvocation, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks whether err is a ChatError with the given code.
func IsCode(err error, code ErrorCode) bool {
	if chatErr, ok := err.(*ChatError); ok {
		return chatErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ChatError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if chatErr, ok := err.(*ChatError); ok {
		return chatErr.Code
	}
	return defaultCode
}
