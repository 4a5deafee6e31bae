// Package errors provides custom error types for the glossync system.
// These errors enable programmatic error checking across the extraction,
// validation, and merge pipeline, and keep file-level failures
// distinguishable from record-level rejections.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the glossync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoFiles indicates that no supported glossary files were discovered
	ErrNoFiles = errors.New("no glossary files found")

	// ErrNoTerms indicates that extraction produced an empty term set
	ErrNoTerms = errors.New("no glossary terms found")

	// ErrAccessDenied indicates that the remote store refused the operation
	ErrAccessDenied = errors.New("access denied")

	// ErrUnavailable indicates that the remote store is temporarily unavailable
	ErrUnavailable = errors.New("store unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ProcessError represents a file that could not be processed at all:
// unparsable content or a missing required column. It aborts the batch,
// unlike per-record rejections which are accumulated in the normalizer
// report.
type ProcessError struct {
	File    string
	Format  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to process %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("failed to process %s: %s", e.File, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError
func NewProcessError(file, format, message string, err error) *ProcessError {
	return &ProcessError{
		File:    file,
		Format:  format,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StructuralError represents a configuration document that fails the
// required-shape or cross-reference checks. It carries every individual
// finding so the caller can report all of them at once.
type StructuralError struct {
	Stage  string // "input" or "output"
	Errors []string
}

// Error implements the error interface
func (e *StructuralError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s configuration validation failed: %s", e.Stage, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("configuration validation failed: %s", strings.Join(e.Errors, "; "))
}

// Is implements errors.Is support
func (e *StructuralError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewStructuralError creates a new StructuralError
func NewStructuralError(stage string, errs []string) *StructuralError {
	return &StructuralError{Stage: stage, Errors: errs}
}

// MergeFailedError represents an error during glossary merge operations
type MergeFailedError struct {
	Strategy string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *MergeFailedError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("merge error (strategy %s): %s", e.Strategy, e.Message)
	}
	return fmt.Sprintf("merge error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *MergeFailedError) Unwrap() error {
	return e.Err
}

// NewMergeFailedError creates a new MergeFailedError
func NewMergeFailedError(strategy, message string, err error) *MergeFailedError {
	return &MergeFailedError{
		Strategy: strategy,
		Message:  message,
		Err:      err,
	}
}

// APIError represents an error from the configuration store API
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 403:
		return target == ErrAccessDenied
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	Method  string // "bearer", "basic", etc.
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Method:  method,
		Message: message,
		Err:     err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "json", "yaml", "toml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "stat"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAccessDenied checks if an error is an access denied error
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsUnavailable checks if an error indicates store unavailability
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsProcessError checks if an error is a file processing error
func IsProcessError(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapProcess wraps an error as a ProcessError
func WrapProcess(file, format string, err error) error {
	if err == nil {
		return nil
	}
	return NewProcessError(file, format, err.Error(), err)
}
