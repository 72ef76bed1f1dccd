package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// APIError represents an API error response
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("[%d] %s (%s)", e.StatusCode, e.Message, e.FieldSummary())
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

// FieldSummary flattens per-field validation messages in field order.
func (e *APIError) FieldSummary() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
	}
	return strings.Join(parts, ", ")
}

// ParseError parses an error response from the API
func ParseError(resp *resty.Response) error {
	statusCode := resp.StatusCode()

	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err == nil && (errResp.Message != "" || errResp.Code != "") {
		message := errResp.Message
		if message == "" {
			message = errResp.Code
		}
		return &APIError{
			Code:       errResp.Code,
			Message:    message,
			StatusCode: statusCode,
			Fields:     errResp.Errors,
		}
	}

	message := strings.TrimSpace(string(resp.Body()))
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{
		Code:       "unknown_error",
		Message:    message,
		StatusCode: statusCode,
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if error is due to insufficient permissions
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsValidation checks for client errors other than 401 and 404.
func IsValidation(err error) bool {
	code := StatusCode(err)
	return code >= 400 && code < 500 && code != http.StatusUnauthorized && code != http.StatusNotFound
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}

// CheckResponse checks if response is successful and returns error if not
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}

	if !resp.IsSuccess() {
		return ParseError(resp)
	}

	return nil
}

// decode unmarshals a successful response body into target.
func decode(resp *resty.Response, err error, target interface{}) error {
	if err := CheckResponse(resp, err); err != nil {
		return err
	}
	if target == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), target); err != nil {
		return fmt.Errorf("decode %s %s: %w", resp.Request.Method, resp.Request.URL, err)
	}
	return nil
}

// ErrNoToken is returned when login or registration succeeds without a token.
var ErrNoToken = errors.New("no token received")

// ErrUnsuccessful is returned when a 2xx envelope reports success=false.
var ErrUnsuccessful = errors.New("unsuccessful response")
