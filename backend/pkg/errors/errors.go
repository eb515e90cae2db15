package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInvalidInput represents a missing or empty required field
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeNotFound represents an unknown node or edge id
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a duplicate node id or edge pair
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeInvalidFormat represents a malformed import payload
	ErrorTypeInvalidFormat ErrorType = "invalid_format"
	// ErrorTypeUpstream represents failures of external services (LLM, Neo4j)
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeGeneration represents schema or report generation failures
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeUnauthorized represents a missing or invalid session
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeForbidden represents a session lacking the required role
	ErrorTypeForbidden ErrorType = "forbidden"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// NewInvalidInput is returned when a required field is missing
func NewInvalidInput(message string) *BaseError {
	return NewBaseError(ErrorTypeInvalidInput, message, nil)
}

// NewNotFound is returned when a node or edge cannot be found
func NewNotFound(message string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, message, nil)
}

// NewConflict is returned when a node id or edge pair already exists
func NewConflict(message string) *BaseError {
	return NewBaseError(ErrorTypeConflict, message, nil)
}

// NewInvalidFormat is returned when an import payload is malformed
func NewInvalidFormat(message string, err error) *BaseError {
	return NewBaseError(ErrorTypeInvalidFormat, message, err)
}

// NewUnauthorized is returned when credentials or the session are invalid
func NewUnauthorized(message string) *BaseError {
	return NewBaseError(ErrorTypeUnauthorized, message, nil)
}

// NewForbidden is returned when the session lacks the required role
func NewForbidden(message string) *BaseError {
	return NewBaseError(ErrorTypeForbidden, message, nil)
}

// Upstream Errors

// ErrUpstreamFailed is returned when an external service call fails
type ErrUpstreamFailed struct {
	*BaseError
	Service string
}

// Unwrap exposes the embedded BaseError to errors.As
func (e *ErrUpstreamFailed) Unwrap() error { return e.BaseError }

func NewUpstreamFailed(service, message string, err error) *ErrUpstreamFailed {
	return &ErrUpstreamFailed{
		BaseError: NewBaseError(ErrorTypeUpstream, message, err),
		Service:   service,
	}
}

// ErrUpstreamTimeout is returned when an external service does not answer in time
type ErrUpstreamTimeout struct {
	*BaseError
	Service string
	Timeout time.Duration
}

// Unwrap exposes the embedded BaseError to errors.As
func (e *ErrUpstreamTimeout) Unwrap() error { return e.BaseError }

func NewUpstreamTimeout(service string, timeout time.Duration, err error) *ErrUpstreamTimeout {
	return &ErrUpstreamTimeout{
		BaseError: NewBaseError(ErrorTypeUpstream, fmt.Sprintf("%s request timed out after %v", service, timeout), err),
		Service:   service,
		Timeout:   timeout,
	}
}

// ErrFeatureDisabled is returned when an optional upstream integration is
// turned off. It is an upstream error that callers answer with 403.
type ErrFeatureDisabled struct {
	*BaseError
	Feature string
}

func (e *ErrFeatureDisabled) Unwrap() error { return e.BaseError }

func NewFeatureDisabled(feature, message string) *ErrFeatureDisabled {
	return &ErrFeatureDisabled{
		BaseError: NewBaseError(ErrorTypeUpstream, message, nil),
		Feature:   feature,
	}
}

// Generation Errors

// ErrGenerationFailed is returned when a schema or report cannot be produced
type ErrGenerationFailed struct {
	*BaseError
	Generator string
}

// Unwrap exposes the embedded BaseError to errors.As
func (e *ErrGenerationFailed) Unwrap() error { return e.BaseError }

func NewGenerationFailed(generator string, err error) *ErrGenerationFailed {
	return &ErrGenerationFailed{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("%s generation failed", generator), err),
		Generator: generator,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

// Unwrap exposes the embedded BaseError to errors.As
func (e *ErrConfigValidationFailed) Unwrap() error { return e.BaseError }

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var baseErr *BaseError
	if stderrors.As(err, &baseErr) {
		return baseErr.Type == errType
	}
	return false
}

// TypeOf returns the ErrorType carried by err, or "" for foreign errors
func TypeOf(err error) ErrorType {
	var baseErr *BaseError
	if stderrors.As(err, &baseErr) {
		return baseErr.Type
	}
	return ""
}

// MessageOf returns the user-facing message of err without the type prefix
func MessageOf(err error) string {
	var baseErr *BaseError
	if stderrors.As(err, &baseErr) {
		return baseErr.Message
	}
	return err.Error()
}
