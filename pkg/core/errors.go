package core

import (
	"fmt"
)

// ErrorCategory classifies an error for reporting and for the resolver's
// retry decisions.
type ErrorCategory int

const (
	ErrCategoryNone      ErrorCategory = iota // No error
	ErrCategoryHierarchy                      // UI dump could not be parsed
	ErrCategoryQuery                          // Locator syntax is invalid
	ErrCategoryMatch                          // Query is legal but matched nothing (or too little)
	ErrCategoryTransport                      // Device command failed
	ErrCategoryConfig                         // Invalid configuration or arguments
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryHierarchy:
		return "hierarchy"
	case ErrCategoryQuery:
		return "query"
	case ErrCategoryMatch:
		return "match"
	case ErrCategoryTransport:
		return "transport"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// AutomationError represents a structured error with category and details.
type AutomationError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, invalid_query, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface.
func (e *AutomationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AutomationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AutomationError with the same code.
// Derived copies (WithCause, WithDetails) still match their sentinel.
func (e *AutomationError) Is(target error) bool {
	t, ok := target.(*AutomationError)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *AutomationError) WithCause(cause error) *AutomationError {
	return &AutomationError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *AutomationError) WithMessage(msg string) *AutomationError {
	return &AutomationError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithMessagef returns a copy of the error with a formatted message.
func (e *AutomationError) WithMessagef(format string, v ...interface{}) *AutomationError {
	return e.WithMessage(fmt.Sprintf(format, v...))
}

// WithDetails returns a copy of the error with additional details.
func (e *AutomationError) WithDetails(details map[string]interface{}) *AutomationError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AutomationError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors covering the resolution taxonomy.
var (
	// ErrMalformedHierarchy means a UI dump was not well-formed or had no
	// root node. The resolver treats it as a failed poll, not a fatal error.
	ErrMalformedHierarchy = &AutomationError{
		Category: ErrCategoryHierarchy,
		Code:     "malformed_hierarchy",
		Message:  "UI hierarchy could not be parsed",
	}

	// ErrInvalidQuery means the locator itself is broken. Fatal, never retried.
	ErrInvalidQuery = &AutomationError{
		Category: ErrCategoryQuery,
		Code:     "invalid_query",
		Message:  "locator query has invalid syntax",
	}

	// ErrNoMatch means a legal query produced zero or too few matches.
	// This is the only condition that drives polling, fallback and retry.
	ErrNoMatch = &AutomationError{
		Category: ErrCategoryMatch,
		Code:     "no_match",
		Message:  "no element matched the query",
	}

	// ErrElementNotFound is terminal: the wait, fallback and retry chain
	// was exhausted without a resolution.
	ErrElementNotFound = &AutomationError{
		Category: ErrCategoryMatch,
		Code:     "element_not_found",
		Message:  "element not found",
	}

	// ErrTransport wraps device command failures. Propagated verbatim,
	// never retried by the resolver.
	ErrTransport = &AutomationError{
		Category: ErrCategoryTransport,
		Code:     "transport_failure",
		Message:  "device transport command failed",
	}

	ErrInvalidConfig = &AutomationError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)

// NewAutomationError creates a new AutomationError with the given parameters.
func NewAutomationError(category ErrorCategory, code, message string) *AutomationError {
	return &AutomationError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
