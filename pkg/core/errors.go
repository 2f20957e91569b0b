package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies failures for logging and reporting.
type ErrorCategory int

const (
	ErrCategoryNone        ErrorCategory = iota
	ErrCategoryInstruction               // unparseable or structurally invalid instruction
	ErrCategoryLocator                   // bad or missing element locator
	ErrCategoryExecution                 // backend refused or failed the operation
	ErrCategoryCapture                   // state capture failed (loop-terminating)
	ErrCategoryOracle                    // decision oracle unreachable or malformed
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryInstruction:
		return "instruction"
	case ErrCategoryLocator:
		return "locator"
	case ErrCategoryExecution:
		return "execution"
	case ErrCategoryCapture:
		return "capture"
	case ErrCategoryOracle:
		return "oracle"
	default:
		return "unknown"
	}
}

// AgentError is a structured error with category and machine-readable code.
type AgentError struct {
	Category ErrorCategory
	Code     string // malformed_bounds, missing_locator, ...
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// Is matches any AgentError with the same code, so predefined errors work
// as targets for errors.Is regardless of WithMessage/WithCause copies.
func (e *AgentError) Is(target error) bool {
	var other *AgentError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithCause returns a copy of the error with the given cause.
func (e *AgentError) WithCause(cause error) *AgentError {
	return &AgentError{Category: e.Category, Code: e.Code, Message: e.Message, Cause: cause}
}

// WithMessage returns a copy of the error with a custom message.
func (e *AgentError) WithMessage(msg string) *AgentError {
	return &AgentError{Category: e.Category, Code: e.Code, Message: msg, Cause: e.Cause}
}

// Predefined errors. Copies made via WithMessage/WithCause still compare
// equal to these under errors.Is.
var (
	ErrMalformedInstruction = &AgentError{
		Category: ErrCategoryInstruction,
		Code:     "malformed_instruction",
		Message:  "instruction is not valid JSON",
	}
	ErrMalformedBounds = &AgentError{
		Category: ErrCategoryLocator,
		Code:     "malformed_bounds",
		Message:  "malformed bounds string",
	}
	ErrMissingLocator = &AgentError{
		Category: ErrCategoryLocator,
		Code:     "missing_locator",
		Message:  "action requires a locator but none was given",
	}
	ErrUnknownAction = &AgentError{
		Category: ErrCategoryInstruction,
		Code:     "unknown_action",
		Message:  "unknown action kind",
	}
	ErrCaptureFailed = &AgentError{
		Category: ErrCategoryCapture,
		Code:     "capture_failed",
		Message:  "state capture failed",
	}
	ErrOracleFailed = &AgentError{
		Category: ErrCategoryOracle,
		Code:     "oracle_failed",
		Message:  "decision oracle request failed",
	}
)
