package errors

import "time"

// Option customises an AppError at construction time.
type Option func(*AppError)

// WithMetadata attaches metadata while constructing an error.
func WithMetadata(metadata Metadata) Option {
	return func(e *AppError) {
		e.WithFields(metadata)
	}
}

// New creates an AppError of the given category.
func New(category ErrorCategory, code, message string, err error, opts ...Option) *AppError {
	e := &AppError{
		Code:      code,
		Category:  category,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// IntegrityError reports payloads that do not match their recorded digest.
func IntegrityError(code, message string, err error) *AppError {
	return New(ErrCategoryIntegrity, code, message, err)
}

// NetworkError reports failed requests and non-success responses.
func NetworkError(code, message string, err error) *AppError {
	return New(ErrCategoryNetwork, code, message, err)
}

// ToolError reports external converter failures.
func ToolError(code, message string, err error) *AppError {
	return New(ErrCategoryTool, code, message, err)
}

// FilesystemError reports unreadable or unwritable paths.
func FilesystemError(code, message string, err error) *AppError {
	return New(ErrCategoryFilesystem, code, message, err)
}

// ConfigError reports manifest loading failures.
func ConfigError(code, message string, err error) *AppError {
	return New(ErrCategoryConfig, code, message, err)
}

// ValidationError reports manifest content that breaks an invariant.
func ValidationError(code, message string, err error) *AppError {
	return New(ErrCategoryValidation, code, message, err)
}

func genericCode(category ErrorCategory) string {
	switch category {
	case ErrCategoryIntegrity:
		return CodeIntegrityGeneric
	case ErrCategoryNetwork:
		return CodeNetworkGeneric
	case ErrCategoryTool:
		return CodeToolGeneric
	case ErrCategoryFilesystem:
		return CodeFilesystemGeneric
	case ErrCategoryConfig:
		return CodeConfigGeneric
	default:
		return CodeValidationGeneric
	}
}
