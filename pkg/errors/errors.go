package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/validation"
	"github.com/salqa/sal/cli/pkg/vote"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeForbidden ErrorType = "forbidden"

	// Input errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUpload     ErrorType = "upload"
	ErrorTypeBusy       ErrorType = "busy"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether retrying the same action later may succeed.
func (e *CLIError) IsTransient() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeServer, ErrorTypeRateLimit:
		return true
	}
	return false
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check that the API is reachable (api.base_url) and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// SessionExpiredError is returned for a 401 from any endpoint.
func SessionExpiredError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeAuth, "Your session has expired", cause)
	err.StatusCode = 401
	err.Suggestion = "Run 'sal auth login' to sign in again."
	return err
}

// NotLoggedInError is returned before any request when no session exists.
func NotLoggedInError() *CLIError {
	err := NewCLIError(ErrorTypeAuth, "You are not logged in", nil)
	err.Suggestion = "Run 'sal auth login' or 'sal auth register'."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string, cause error) *CLIError {
	if message == "" {
		message = "You can't do that"
	}
	err := NewCLIError(ErrorTypeForbidden, message, cause)
	err.StatusCode = 403
	return err
}

// ValidationError creates a validation error
func ValidationError(message string, cause error) *CLIError {
	return NewCLIError(ErrorTypeValidation, message, cause)
}

// ServerError creates a server error
func ServerError(status int, cause error) *CLIError {
	err := NewCLIError(ErrorTypeServer, fmt.Sprintf("Server error (%d)", status), cause)
	err.StatusCode = status
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(message string, cause error) *CLIError {
	if message == "" {
		message = "Not found"
	}
	err := NewCLIError(ErrorTypeNotFound, message, cause)
	err.StatusCode = 404
	return err
}

// RateLimitError creates a rate limit error
func RateLimitError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeRateLimit, "Rate limit exceeded. Too many requests.", cause)
	err.StatusCode = 429
	err.Suggestion = "Wait a minute before trying again."
	return err
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr, err)
	}

	var formErr *validation.Error
	if errors.As(err, &formErr) {
		return ValidationError(formErr.Error(), err)
	}

	var upErr *api.UploadError
	if errors.As(err, &upErr) {
		e := NewCLIError(ErrorTypeUpload, upErr.Error(), err)
		e.Suggestion = fmt.Sprintf("Images must be jpeg, png, gif or webp and at most %d MB.", api.MaxUploadSize/(1024*1024))
		return e
	}

	if errors.Is(err, vote.ErrInFlight) {
		return NewCLIError(ErrorTypeBusy, err.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return TimeoutError(err)
		}
		return NetworkError("Could not connect to the server", err)
	}
	if strings.Contains(err.Error(), "connection refused") {
		return NetworkError("Could not connect to the server", err)
	}

	return NewCLIError(ErrorTypeUnknown, err.Error(), err)
}

func fromAPIError(apiErr *api.APIError, cause error) *CLIError {
	switch code := apiErr.StatusCode; {
	case code == 401:
		return SessionExpiredError(cause)
	case code == 403:
		return ForbiddenError(apiErr.Message, cause)
	case code == 404:
		return NotFoundError(apiErr.Message, cause)
	case code == 429:
		return RateLimitError(cause)
	case code >= 500:
		return ServerError(code, cause)
	default:
		msg := apiErr.Message
		if len(apiErr.Fields) > 0 {
			msg = fmt.Sprintf("%s (%s)", msg, apiErr.FieldSummary())
		}
		e := ValidationError(msg, cause)
		e.StatusCode = code
		return e
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
