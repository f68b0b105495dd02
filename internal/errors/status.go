package errors

import (
	"fmt"
	"net/http"
)

// StatusError represents a non-2xx HTTP response from an upstream API
type StatusError struct {
	Message    string
	StatusCode int
	Body       string // Truncated response body if available
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// NewStatusError creates a StatusError with a message derived from the status code
func NewStatusError(statusCode int, body string) *StatusError {
	var message string

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		message = "Request rejected - check API key"
	case statusCode == http.StatusNotFound:
		message = "Resource not found"
	case statusCode == http.StatusTooManyRequests:
		message = "Rate limited by upstream"
	case statusCode >= 500:
		message = "Upstream server error"
	default:
		message = "Unexpected response status"
	}

	return &StatusError{
		Message:    message,
		StatusCode: statusCode,
		Body:       body,
	}
}
