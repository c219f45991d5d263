package errors

// ErrorCategory groups related failures so callers can react to a class of
// problem rather than to individual messages.
type ErrorCategory string

const (
	ErrCategoryIntegrity  ErrorCategory = "INTEGRITY"
	ErrCategoryNetwork    ErrorCategory = "NETWORK"
	ErrCategoryTool       ErrorCategory = "TOOL"
	ErrCategoryFilesystem ErrorCategory = "FILESYSTEM"
	ErrCategoryConfig     ErrorCategory = "CONFIG"
	ErrCategoryValidation ErrorCategory = "VALIDATION"
)

// Generic and specific error codes.
const (
	CodeIntegrityGeneric  = "INT-000"
	CodeDigestMismatch    = "INT-001"
	CodeNetworkGeneric    = "NET-000"
	CodeHTTPStatus        = "NET-001"
	CodeToolGeneric       = "TOOL-000"
	CodeToolExit          = "TOOL-001"
	CodeFilesystemGeneric = "FS-000"
	CodeConfigGeneric     = "CFG-000"
	CodeValidationGeneric = "VAL-000"
	CodeUnknownAlgorithm  = "VAL-001"
)
