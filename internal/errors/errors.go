package errors

import (
	"errors"
	"fmt"
	"time"
)

// Metadata holds structured error attributes for diagnostics and logging.
type Metadata map[string]interface{}

// AppError is the structured error type returned across package boundaries.
type AppError struct {
	Code      string
	Category  ErrorCategory
	Message   string
	Operation string
	Module    string
	Err       error
	Metadata  Metadata
	Timestamp time.Time
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation annotates the error with the current operation name.
func (e *AppError) WithOperation(operation string) *AppError {
	e.Operation = operation
	return e
}

// WithModule annotates the error with the module name.
func (e *AppError) WithModule(module string) *AppError {
	e.Module = module
	return e
}

// WithField appends a single metadata entry.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(Metadata)
	}
	e.Metadata[key] = value
	return e
}

// WithFields merges the provided metadata entries.
func (e *AppError) WithFields(metadata Metadata) *AppError {
	if len(metadata) == 0 {
		return e
	}
	if e.Metadata == nil {
		e.Metadata = make(Metadata, len(metadata))
	}
	for k, v := range metadata {
		e.Metadata[k] = v
	}
	return e
}

// As unwraps err to an AppError when one is present in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCategory reports whether err carries an AppError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	appErr, ok := As(err)
	return ok && appErr.Category == category
}

// Annotate fills module and operation on an AppError that has none yet and
// wraps any other error as a generic error of the fallback category.
func Annotate(err error, fallback ErrorCategory, module, operation string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		if appErr.Module == "" {
			appErr.WithModule(module)
		}
		if appErr.Operation == "" {
			appErr.WithOperation(operation)
		}
		return appErr
	}
	return New(fallback, genericCode(fallback), "unexpected failure", err).
		WithModule(module).
		WithOperation(operation)
}

// TimestampOrNow returns the timestamp associated with the error or now when unset.
func (e *AppError) TimestampOrNow() time.Time {
	if e == nil || e.Timestamp.IsZero() {
		return time.Now()
	}
	return e.Timestamp
}
