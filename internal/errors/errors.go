// Package errors provides a lightweight structured error type (SiteError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryExport     ErrorCategory = "export"
	CategoryTemplate   ErrorCategory = "template"
	CategoryFeed       ErrorCategory = "feed"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryWatch    ErrorCategory = "watch"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// SiteError is a structured error with category, severity, and context
type SiteError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SiteError
type ContextFields map[string]any

// Error implements the error interface
func (e *SiteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SiteError) WithContext(key string, value any) *SiteError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SiteError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SiteError {
	return &SiteError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Newf creates a new SiteError with a formatted message
func Newf(category ErrorCategory, severity ErrorSeverity, format string, args ...any) *SiteError {
	return New(category, severity, fmt.Sprintf(format, args...))
}

// Wrap creates a new SiteError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SiteError {
	return &SiteError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Wrapf creates a new SiteError wrapping err with a formatted message
func Wrapf(err error, category ErrorCategory, severity ErrorSeverity, format string, args ...any) *SiteError {
	return Wrap(err, category, severity, fmt.Sprintf(format, args...))
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := err.(*SiteError); ok {
		return se.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SiteError
func GetCategory(err error) ErrorCategory {
	if se, ok := err.(*SiteError); ok {
		return se.Category
	}
	return CategoryInternal
}

// ConfigError creates a new fatal configuration error
func ConfigError(message string) *SiteError {
	return &SiteError{
		Category: CategoryConfig,
		Severity: SeverityFatal,
		Message:  message,
	}
}

// ValidationError creates a new validation error
func ValidationError(message string) *SiteError {
	return &SiteError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}
