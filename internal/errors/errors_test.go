package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("omdb lookup: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		expectedMessage string
	}{
		{
			name:            "zero duration",
			duration:        0,
			expectedMessage: "rate limited",
		},
		{
			name:            "30 seconds",
			duration:        30 * time.Second,
			expectedMessage: "rate limited (retry after 30s)",
		},
		{
			name:            "1 hour",
			duration:        1 * time.Hour,
			expectedMessage: "rate limited (retry after 1h0m0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("rate limited", tt.duration)
			if err.Error() != tt.expectedMessage {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expectedMessage)
			}
			if err.RetryAfter != tt.duration {
				t.Fatalf("RetryAfter = %v, want %v", err.RetryAfter, tt.duration)
			}
		})
	}
}

func TestStopProcessingError(t *testing.T) {
	err := NewStopProcessingError("run interrupted", context.Canceled)

	if err.Error() != "run interrupted: context canceled" {
		t.Fatalf("Error message = %q", err.Error())
	}

	if !IsStopProcessingError(err) {
		t.Fatalf("IsStopProcessingError returned false for StopProcessingError")
	}

	if !stdErrors.Is(err, context.Canceled) {
		t.Fatalf("StopProcessingError should unwrap to its cause")
	}

	wrapped := stdErrors.Join(err)
	if !IsStopProcessingError(wrapped) {
		t.Fatalf("IsStopProcessingError returned false for wrapped StopProcessingError")
	}
}

func TestStopProcessingError_NoCause(t *testing.T) {
	err := NewStopProcessingError("user stopped", nil)
	if err.Error() != "user stopped" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "user stopped")
	}
}

func TestStatusError_Messages(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
		full    string
	}{
		{401, "Invalid API key!", "Request rejected - check API key", "Request rejected - check API key (HTTP 401): Invalid API key!"},
		{403, "", "Request rejected - check API key", "Request rejected - check API key (HTTP 403)"},
		{404, "", "Resource not found", "Resource not found (HTTP 404)"},
		{429, "", "Rate limited by upstream", "Rate limited by upstream (HTTP 429)"},
		{502, "bad gateway", "Upstream server error", "Upstream server error (HTTP 502): bad gateway"},
		{418, "", "Unexpected response status", "Unexpected response status (HTTP 418)"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := NewStatusError(tt.status, tt.body)
			if err.Message != tt.message {
				t.Fatalf("Message = %q, want %q", err.Message, tt.message)
			}
			if err.Error() != tt.full {
				t.Fatalf("Error() = %q, want %q", err.Error(), tt.full)
			}
			if err.StatusCode != tt.status {
				t.Fatalf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Missing: []string{"TRAKT_CLIENT_ID", "OMDB_KEY"}}

	want := "missing required configuration: TRAKT_CLIENT_ID, OMDB_KEY"
	if err.Error() != want {
		t.Fatalf("Error message = %q, want %q", err.Error(), want)
	}
	if err.Empty() {
		t.Fatalf("Empty() = true for ConfigError with missing keys")
	}
	if !IsConfigError(fmt.Errorf("startup: %w", err)) {
		t.Fatalf("IsConfigError returned false for wrapped ConfigError")
	}
}

func TestConfigError_Invalid(t *testing.T) {
	err := &ConfigError{
		Missing: []string{"OMDB_KEY"},
		Invalid: []string{"retry.attempts must be >= 1"},
	}

	want := "missing required configuration: OMDB_KEY; invalid configuration: retry.attempts must be >= 1"
	if err.Error() != want {
		t.Fatalf("Error message = %q, want %q", err.Error(), want)
	}

	if !(&ConfigError{}).Empty() {
		t.Fatalf("Empty() = false for zero ConfigError")
	}
}
