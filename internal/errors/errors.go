// Package errors provides structured error types for gisdb.
// Every error carries a category, code, message, and retryable flag so the
// command layer can report failures uniformly and keep processing.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryScript     ErrorCategory = "SCRIPT"
	ErrCategoryIndex      ErrorCategory = "INDEX"
	ErrCategoryManifest   ErrorCategory = "MANIFEST"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidBounds     = "INVALID_BOUNDS"
	CodeInvalidCoordinate = "INVALID_COORDINATE"
	CodeInvalidRecord     = "INVALID_RECORD"
	CodeMissingValue      = "MISSING_VALUE"
	CodeInvalidConfig     = "INVALID_CONFIG"

	// Storage codes
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"
	CodeReadFailed     = "READ_FAILED"
	CodeWriteFailed    = "WRITE_FAILED"

	// Script codes
	CodeUnknownCommand = "UNKNOWN_COMMAND"
	CodeBadArity       = "BAD_ARITY"
	CodeBadArgument    = "BAD_ARGUMENT"

	// Index codes
	CodeWorldAlreadySet = "WORLD_ALREADY_SET"
	CodeWorldNotSet     = "WORLD_NOT_SET"

	// Manifest codes
	CodeRegisterFailed = "REGISTER_FAILED"
	CodeCatalogQuery   = "CATALOG_QUERY"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// GISError is the structured error type used throughout the system.
type GISError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *GISError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *GISError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *GISError) Is(target error) bool {
	var t *GISError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new GISError.
func New(category ErrorCategory, code, message string) *GISError {
	return &GISError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new GISError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *GISError {
	return &GISError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *GISError) WithDetails(details map[string]interface{}) *GISError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var ge *GISError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a GISError.
func GetCategory(err error) ErrorCategory {
	var ge *GISError
	if errors.As(err, &ge) {
		return ge.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a GISError.
func GetCode(err error) string {
	var ge *GISError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// Only remote object downloads can succeed on a second attempt.
func isRetryable(category ErrorCategory, code string) bool {
	return category == ErrCategoryStorage && code == CodeDownloadFailed
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *GISError {
	return New(ErrCategoryValidation, code, message)
}

func NewStorageError(code, message string, cause error) *GISError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewScriptError(code, message string) *GISError {
	return New(ErrCategoryScript, code, message)
}

func NewIndexError(code, message string) *GISError {
	return New(ErrCategoryIndex, code, message)
}

func NewManifestError(code, message string, cause error) *GISError {
	return Wrap(ErrCategoryManifest, code, message, cause)
}

func NewInternalError(message string, cause error) *GISError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
