package errors

import (
	"fmt"
)

// ErrorCode classifies failures into banded ranges, one band per stage.
type ErrorCode int

// System and configuration errors (1000-1999)
const (
	ErrCodeInternal ErrorCode = 1000 + iota
	ErrCodeConfig
	ErrCodeConfigInvalid
	ErrCodeLoggerInit
)

// Catalog and selector errors (2000-2999)
const (
	ErrCodeCatalog ErrorCode = 2000 + iota
	ErrCodeNoBenchmarkSets
	ErrCodeBenchmarkFormat
	ErrCodeSelectorSyntax
	ErrCodeSelectorEmpty
	ErrCodeSelectorNoMatch
)

// Resource policy errors (3000-3999)
const (
	ErrCodeResource ErrorCode = 3000 + iota
	ErrCodeUnknownPartition
	ErrCodeTimeLimit
	ErrCodeMemoryLimit
	ErrCodeCPUCount
	ErrCodeGPUCount
)

// Job build errors (4000-4999)
const (
	ErrCodeBuild ErrorCode = 4000 + iota
	ErrCodeWorkDirExists
	ErrCodeSolverMissing
	ErrCodeFrameworkMissing
	ErrCodeRuntimeMissing
)

// Dispatch errors (5000-5999)
const (
	ErrCodeDispatch ErrorCode = 5000 + iota
	ErrCodeSubmitFailed
)

// Store, results and local-run errors (6000-6999)
const (
	ErrCodeStore ErrorCode = 6000 + iota
	ErrCodeResults
	ErrCodeLocalRun
)

// BenchError is the error type carried through the submission pipeline.
type BenchError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BenchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap supports error chains.
func (e *BenchError) Unwrap() error {
	return e.Err
}

// New creates a new error with a code and message.
func New(code ErrorCode, message string) *BenchError {
	return &BenchError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a code and message to an existing error.
func Wrap(code ErrorCode, message string, err error) *BenchError {
	return &BenchError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Predefined constructors.

// NewConfigError creates a configuration error.
func NewConfigError(message string, err error) *BenchError {
	return Wrap(ErrCodeConfig, message, err)
}

// NewCatalogError creates a benchmark catalog error.
func NewCatalogError(message string, err error) *BenchError {
	return Wrap(ErrCodeCatalog, message, err)
}

// NewEmptySelectionError reports a selector that resolved to nothing.
func NewEmptySelectionError() *BenchError {
	return New(ErrCodeSelectorEmpty, "no benchmarks selected")
}

// NewNoMatchError reports a wildcard token that matched no set name.
func NewNoMatchError(token string) *BenchError {
	return New(ErrCodeSelectorNoMatch, fmt.Sprintf("no benchmark sets matched pattern '%s'", token))
}

// NewBuildError creates a job build error.
func NewBuildError(message string, err error) *BenchError {
	return Wrap(ErrCodeBuild, message, err)
}

// NewDispatchError creates a submission error.
func NewDispatchError(message string, err error) *BenchError {
	return Wrap(ErrCodeDispatch, message, err)
}

// NewStoreError creates an object store error.
func NewStoreError(message string, err error) *BenchError {
	return Wrap(ErrCodeStore, message, err)
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	if benchErr, ok := err.(*BenchError); ok {
		return benchErr.Code == code
	}
	return false
}

// GetErrorCode extracts the code from an error.
func GetErrorCode(err error) ErrorCode {
	if benchErr, ok := err.(*BenchError); ok {
		return benchErr.Code
	}
	return ErrCodeInternal
}
