package operations

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeExtraction   ErrorType = "extraction"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// OperationError represents an error raised by one step of a merge run
type OperationError struct {
	Type    ErrorType              `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Step != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewExtractionError records a workbook that could not be read. It is never
// fatal for the run.
func NewExtractionError(path string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExtraction,
		Step:    StepExtract,
		Message: "failed to read " + path,
		Cause:   cause,
		Context: map[string]interface{}{
			"file": path,
		},
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	if opErr, ok := err.(*OperationError); ok {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// ErrorList collects the non-fatal errors of a run
type ErrorList struct {
	Errors []*OperationError `json:"errors"`
}

// Error implements the error interface
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Add adds an error to the list
func (e *ErrorList) Add(err *OperationError) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// GetByStep returns all errors for a specific step
func (e *ErrorList) GetByStep(step string) []*OperationError {
	var result []*OperationError
	for _, err := range e.Errors {
		if err.Step == step {
			result = append(result, err)
		}
	}
	return result
}
