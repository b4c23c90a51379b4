// Package errors provides structured error handling for nmapcycle operations.
// It defines error codes, error types, and provides utilities for creating
// and handling errors with context and structured information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeCanceled      ErrorCode = "CANCELED"

	// Cycle control errors.
	CodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"
	CodeNotRunning     ErrorCode = "NOT_RUNNING"

	// Invocation errors.
	CodeInvocationFailed ErrorCode = "INVOCATION_FAILED"
	CodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"

	// File system errors.
	CodeFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	CodeDirectoryCreate ErrorCode = "DIRECTORY_CREATE"
)

// CycleError represents an error raised while controlling or running a scan cycle.
type CycleError struct {
	Code    ErrorCode
	Message string
	Target  string
	Mode    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	switch {
	case e.Mode != "" && e.Target != "":
		return fmt.Sprintf("[%s] %s (mode: %s, target: %s)", e.Code, e.Message, e.Mode, e.Target)
	case e.Target != "":
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *CycleError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *CycleError) WithContext(key string, value interface{}) *CycleError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewCycleError creates a new cycle error with the specified code and message.
func NewCycleError(code ErrorCode, message string) *CycleError {
	return &CycleError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WrapCycleError wraps an existing error as a cycle error.
func WrapCycleError(code ErrorCode, message string, err error) *CycleError {
	return &CycleError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error, or any error it wraps, has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	var cycleErr *CycleError
	if stderrors.As(err, &cycleErr) {
		return cycleErr.Code
	}
	var cfgErr *ConfigError
	if stderrors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	return CodeUnknown
}

// IsFatal determines if an error ends a cycle or prevents one from starting.
// Invocation failures are never fatal: the cycle moves on to the next mode.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeDirectoryCreate, CodeConfiguration, CodeToolNotFound:
		return true
	default:
		return false
	}
}

// Common error creation functions

// ErrInvalidRequest creates an error for a request rejected before a cycle starts.
func ErrInvalidRequest(reason string) *CycleError {
	return NewCycleError(CodeValidation, reason)
}

// ErrAlreadyRunning creates an error for a start request while a cycle is active.
func ErrAlreadyRunning() *CycleError {
	return NewCycleError(CodeAlreadyRunning, "scan cycle is already running")
}

// ErrNotRunning creates an error for a stop request while idle.
func ErrNotRunning() *CycleError {
	return NewCycleError(CodeNotRunning, "no scan cycle is running")
}

// ErrDirectorySetup creates an error for an output directory that cannot be created.
func ErrDirectorySetup(dir string, err error) *CycleError {
	return WrapCycleError(CodeDirectoryCreate, "failed to create output directory", err).
		WithContext("dir", dir)
}

// ErrInvocationFailed creates an error for a failed tool invocation.
func ErrInvocationFailed(mode, target string, err error) *CycleError {
	e := WrapCycleError(CodeInvocationFailed, "scan invocation failed", err)
	e.Mode = mode
	e.Target = target
	return e
}

// ErrToolNotFound creates an error for a scanning tool that cannot be resolved.
func ErrToolNotFound(tool string, err error) *CycleError {
	return WrapCycleError(CodeToolNotFound, "scanning tool not found", err).
		WithContext("tool", tool)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}
