package operations

import (
	"context"
	"errors"
	"fmt"

	"sumocli/internal/awards"
	"sumocli/internal/checkpoint"
	"sumocli/internal/crossref"
	"sumocli/internal/profile"
	"sumocli/internal/render"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
	ErrorTypeNavigation   ErrorType = "navigation"
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypeConsistency  ErrorType = "consistency"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// OperationError represents a operation-specific error
type OperationError struct {
	Type      ErrorType              `json:"type"`
	Step      string                 `json:"step,omitempty"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"cause,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error, retryable bool) *OperationError {
	return &OperationError{
		Type:      ErrorTypeExecution,
		Step:      step,
		Message:   "step execution failed",
		Cause:     cause,
		Retryable: retryable,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(step string, timeout string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeTimeout,
		Step:    step,
		Message: fmt.Sprintf("step exceeded timeout of %s", timeout),
		Context: map[string]interface{}{
			"timeout": timeout,
		},
		Retryable: true,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "operation was cancelled",
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeFatal,
		Message: message,
		Cause:   cause,
	}
}

// NewNavigationError reports pages that could not be loaded. Another run of
// the stage may succeed.
func NewNavigationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:      ErrorTypeNavigation,
		Step:      step,
		Message:   "page navigation failed",
		Cause:     cause,
		Retryable: true,
	}
}

// NewParseError reports a document that could not be read at all
func NewParseError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeParse,
		Step:    step,
		Message: "document could not be parsed",
		Cause:   cause,
	}
}

// NewConsistencyError reports a roster that does not line up with the
// cross-source ranking table
func NewConsistencyError(step string, cause error) *OperationError {
	e := &OperationError{
		Type:    ErrorTypeConsistency,
		Step:    step,
		Message: "cross-source ranking mismatch",
		Cause:   cause,
	}
	var ce *crossref.ConsistencyError
	if errors.As(cause, &ce) {
		e.Context = map[string]interface{}{
			"identity": ce.Identity,
			"key":      ce.Key,
			"ordinal":  ce.Ordinal,
		}
	}
	return e
}

// ClassifyError maps a stage failure onto an OperationError
func ClassifyError(step string, err error) *OperationError {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = step
		}
		return opErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		e := NewCancellationError(step)
		e.Cause = err
		return e
	case errors.Is(err, context.DeadlineExceeded):
		e := NewTimeoutError(step, "stage deadline")
		e.Cause = err
		return e
	case crossref.IsConsistencyError(err):
		return NewConsistencyError(step, err)
	case errors.Is(err, awards.ErrNoChampions):
		return NewParseError(step, err)
	case errors.Is(err, checkpoint.ErrCheckpointMissing):
		e := NewValidationError(step, "append mode needs an existing checkpoint")
		e.Cause = err
		return e
	case errors.Is(err, profile.ErrTooManyFailures),
		errors.Is(err, profile.ErrAttemptsExhausted),
		render.IsWaitTimeout(err):
		return NewNavigationError(step, err)
	}
	return NewExecutionError(step, err, false)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	return false
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// ErrOperationNotFound is returned when a operation cannot be found
var ErrOperationNotFound = &OperationError{
	Type:    ErrorTypeNotFound,
	Message: "operation not found",
}
