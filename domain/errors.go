package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by DomainError. Per-function outcomes such as an
// unsupported construct are RouteStatus values, not errors.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeTimeout           = "TIMEOUT"
)

// DomainError is an error of the analysis pipeline tagged with a code
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
}

func (e DomainError) Unwrap() error { return e.Cause }

// NewDomainError creates a DomainError
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, "file not found: "+path, cause)
}

// NewParseError reports a source file no front end could lower
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, "failed to parse file: "+file, cause)
}

func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewNoGeneratorsError reports a run whose inputs hold no generator
// function; cause is the first parse failure, if any
func NewNoGeneratorsError(cause error) error {
	return NewAnalysisError("no generator functions found to analyze", cause)
}

func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, "unsupported format: "+format, nil)
}

// NewTimeoutError reports a run that exceeded performance.timeout_seconds
func NewTimeoutError(message string, cause error) error {
	return NewDomainError(ErrCodeTimeout, message, cause)
}

// ErrorCode returns the code of the first DomainError in err's chain, or ""
func ErrorCode(err error) string {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
