// Package errors provides custom error types for the journalmap system.
// These errors enable programmatic error checking at the reconciliation
// boundary, where a handler fault, an invalid entity, and a misconfigured
// engine all mean very different things to a caller.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the journalmap system
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrNoHandlers indicates that an engine was invoked without any
	// registered handler of the required type
	ErrNoHandlers = errors.New("no handlers registered")

	// ErrInvalidEntity indicates an entity with an empty identifier set
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrHandlerFault indicates that a backing store was unreachable or
	// rejected a query
	ErrHandlerFault = errors.New("handler fault")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Kind string // "journal", "category", "area", "entity"
	ID   string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConfigurationError represents an engine invoked without the handlers a
// query requires. It is fatal for that call and deliberately distinct from
// an empty result set.
type ConfigurationError struct {
	HandlerType string // "journal" or "category"
	Operation   string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("no %s handlers registered for %s", e.HandlerType, e.Operation)
	}
	return fmt.Sprintf("no %s handlers registered", e.HandlerType)
}

// Is implements errors.Is support
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNoHandlers
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(handlerType, operation string) *ConfigurationError {
	return &ConfigurationError{HandlerType: handlerType, Operation: operation}
}

// HandlerFaultError represents a failure local to one handler: the backing
// store was unreachable, the query was malformed, or the per-handler timeout
// expired. The engine absorbs these at the fan-out boundary.
type HandlerFaultError struct {
	Endpoint  string
	Operation string
	Err       error
}

// Error implements the error interface
func (e *HandlerFaultError) Error() string {
	return fmt.Sprintf("handler %s failed during %s: %v", e.Endpoint, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *HandlerFaultError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *HandlerFaultError) Is(target error) bool {
	return target == ErrHandlerFault
}

// NewHandlerFaultError creates a new HandlerFaultError
func NewHandlerFaultError(endpoint, operation string, err error) *HandlerFaultError {
	return &HandlerFaultError{Endpoint: endpoint, Operation: operation, Err: err}
}

// InvalidEntityError represents a record that cannot participate in
// reconciliation because its identifier set is empty.
type InvalidEntityError struct {
	Kind    string
	Message string
}

// Error implements the error interface
func (e *InvalidEntityError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("invalid %s: empty identifier set", e.Kind)
}

// Is implements errors.Is support
func (e *InvalidEntityError) Is(target error) bool {
	return target == ErrInvalidEntity
}

// NewInvalidEntityError creates a new InvalidEntityError
func NewInvalidEntityError(kind, message string) *InvalidEntityError {
	return &InvalidEntityError{Kind: kind, Message: message}
}

// ParseError represents an error when parsing source data
type ParseError struct {
	Format  string // "csv", "json", "sparql-json"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
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
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// UploadError represents a failure while pushing source records into a
// backing store. Records is the count that made it in before the failure.
type UploadError struct {
	Target  string
	Records int
	Total   int
	Err     error
}

// Error implements the error interface
func (e *UploadError) Error() string {
	if e.Total > 0 {
		return fmt.Sprintf("upload to %s failed after %d of %d records: %v", e.Target, e.Records, e.Total, e.Err)
	}
	return fmt.Sprintf("upload to %s failed: %v", e.Target, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UploadError) Unwrap() error {
	return e.Err
}

// NewUploadError creates a new UploadError
func NewUploadError(target string, records, total int, err error) *UploadError {
	return &UploadError{Target: target, Records: records, Total: total, Err: err}
}

// TimeoutError represents a per-handler timeout at the fan-out boundary
type TimeoutError struct {
	Endpoint  string
	Operation string
	Duration  string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("handler %s timed out during %s after %s", e.Endpoint, e.Operation, e.Duration)
	}
	return fmt.Sprintf("handler %s timed out during %s", e.Endpoint, e.Operation)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == ErrHandlerFault
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(endpoint, operation, duration string) *TimeoutError {
	return &TimeoutError{Endpoint: endpoint, Operation: operation, Duration: duration}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoHandlers checks if an error is a zero-handler configuration error
func IsNoHandlers(err error) bool {
	return errors.Is(err, ErrNoHandlers)
}

// IsInvalidEntity checks if an error is an invalid entity error
func IsInvalidEntity(err error) bool {
	return errors.Is(err, ErrInvalidEntity)
}

// IsHandlerFault checks if an error is a handler fault
func IsHandlerFault(err error) bool {
	return errors.Is(err, ErrHandlerFault)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

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

// Join combines multiple errors into one, dropping nils.
// It's an alias for the standard library errors.Join.
var Join = errors.Join

// Messages renders a compact single-line summary of a joined error.
func Messages(err error) string {
	if err == nil {
		return ""
	}
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
