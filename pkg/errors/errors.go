package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrManifestLoad    ErrorCode = "MANIFEST_LOAD"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Transport errors
	ErrTransport     ErrorCode = "TRANSPORT"
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"

	// Backup errors
	ErrBackupMove    ErrorCode = "BACKUP_MOVE"
	ErrBackupDiscard ErrorCode = "BACKUP_DISCARD"

	// Provisioning errors
	ErrRequire    ErrorCode = "REQUIRE"
	ErrStepFailed ErrorCode = "STEP_FAILED"
	ErrPrompt     ErrorCode = "PROMPT"
)

// HomesteadError represents a structured error with code and details
type HomesteadError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *HomesteadError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *HomesteadError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a HomesteadError with the same code
func (e *HomesteadError) Is(target error) bool {
	var targetErr *HomesteadError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new HomesteadError with the given code and message
func New(code ErrorCode, message string) *HomesteadError {
	return &HomesteadError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new HomesteadError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *HomesteadError {
	return &HomesteadError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a HomesteadError. It returns nil for a nil err.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &HomesteadError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &HomesteadError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *HomesteadError) WithDetail(key string, value interface{}) *HomesteadError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var hErr *HomesteadError
		if !errors.As(err, &hErr) {
			return false
		}
		if hErr.Code == code {
			return true
		}
		err = hErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if err is not a HomesteadError
func GetErrorCode(err error) ErrorCode {
	var hErr *HomesteadError
	if errors.As(err, &hErr) {
		return hErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a HomesteadError
func GetErrorDetails(err error) map[string]interface{} {
	var hErr *HomesteadError
	if errors.As(err, &hErr) {
		return hErr.Details
	}
	return nil
}
