package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a cardsmith error code.
type ErrorCode string

const (
	ErrConfigMissing        ErrorCode = "CONFIG_MISSING"         // fatal at startup
	ErrConfigMalformed      ErrorCode = "CONFIG_MALFORMED"       // fatal at startup
	ErrCredentialAbsent     ErrorCode = "CREDENTIAL_ABSENT"      // fatal at startup
	ErrUnknownStyle         ErrorCode = "UNKNOWN_STYLE"          // 400
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"        // 400
	ErrNotFound             ErrorCode = "NOT_FOUND"              // 404
	ErrGenerationInProgress ErrorCode = "GENERATION_IN_PROGRESS" // 409
	ErrGenerationFailed     ErrorCode = "GENERATION_FAILED"      // 502
	ErrInternal             ErrorCode = "INTERNAL"               // 500
)

// CardError represents a structured error with code, status, and details.
type CardError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigMissing creates an error for a config file that does not exist.
func NewConfigMissing(path string) *CardError {
	return &CardError{
		Code:    ErrConfigMissing,
		Status:  500,
		Message: fmt.Sprintf("config file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConfigMalformed creates an error for a config file that cannot be parsed.
func NewConfigMalformed(path string, err error) *CardError {
	msg := fmt.Sprintf("config file %s could not be parsed", path)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &CardError{
		Code:    ErrConfigMalformed,
		Status:  500,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewCredentialAbsent creates an error for a config file without an API key.
func NewCredentialAbsent(path string) *CardError {
	return &CardError{
		Code:    ErrCredentialAbsent,
		Status:  500,
		Message: fmt.Sprintf("no API key in %s; add it under [api] as anthropic_key = \"...\"", path),
		Details: map[string]any{"path": path},
	}
}

// NewUnknownStyle creates a 400 error for a style name missing from the catalog.
func NewUnknownStyle(name string) *CardError {
	return &CardError{
		Code:    ErrUnknownStyle,
		Status:  400,
		Message: fmt.Sprintf("unknown style: %q", name),
		Details: map[string]any{"style": name},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CardError {
	return &CardError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(identifier string) *CardError {
	return &CardError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewGenerationInProgress creates a 409 error when a session already has a generation in flight.
func NewGenerationInProgress() *CardError {
	return &CardError{
		Code:    ErrGenerationInProgress,
		Status:  409,
		Message: "a card is already being generated for this session",
	}
}

// NewGenerationFailed creates a 502 error carrying the generation client's failure message.
func NewGenerationFailed(reason string) *CardError {
	return &CardError{
		Code:    ErrGenerationFailed,
		Status:  502,
		Message: fmt.Sprintf("generation failed: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CardError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CardError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a CardError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CardError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// IsFatal reports whether err is one of the startup configuration errors
// that must halt the process.
func IsFatal(err error) bool {
	return Is(err, ErrConfigMissing) || Is(err, ErrConfigMalformed) || Is(err, ErrCredentialAbsent)
}
