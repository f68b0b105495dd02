package errors

import "errors"

// StopProcessingError signals that a run was interrupted before the catalog was written.
type StopProcessingError struct {
	Reason string
	Cause  error
}

func (e *StopProcessingError) Error() string {
	if e.Cause != nil {
		return e.Reason + ": " + e.Cause.Error()
	}
	return e.Reason
}

func (e *StopProcessingError) Unwrap() error {
	return e.Cause
}

// NewStopProcessingError creates a StopProcessingError with the provided reason.
func NewStopProcessingError(reason string, cause error) *StopProcessingError {
	return &StopProcessingError{Reason: reason, Cause: cause}
}

// IsStopProcessingError reports whether err is a StopProcessingError (even when wrapped).
func IsStopProcessingError(err error) bool {
	var stopErr *StopProcessingError
	return errors.As(err, &stopErr)
}
