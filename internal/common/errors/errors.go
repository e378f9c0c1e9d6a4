// Package errors provides standardized error handling for the quote engine
// boundary: configuration, file I/O, catalog loading, and notification. The
// pricing core itself never returns errors; interpretation gaps and provider
// misses resolve to defaults by contract.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTranscriptReadFailed ErrorCode = "TRANSCRIPT_READ_FAILED"
	ErrCodeQuoteWriteFailed     ErrorCode = "QUOTE_WRITE_FAILED"

	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeNotifyFailed        ErrorCode = "NOTIFY_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTranscriptReadError wraps a failure to read the input transcript.
func NewTranscriptReadError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptReadFailed,
		Message:   "Failed to read transcript",
		Details:   fmt.Sprintf("path: %s: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuoteWriteError wraps a failure to write the output quote.
func NewQuoteWriteError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuoteWriteFailed,
		Message:   "Failed to write quote",
		Details:   fmt.Sprintf("path: %s: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError wraps a configuration load or validation failure.
func NewConfigInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError wraps a catalog load or validation failure.
func NewCatalogInvalidError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Invalid task catalog",
		Details:   fmt.Sprintf("path: %s: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaValidationError wraps an output document that violates the quote
// schema. This always indicates an engine bug, never bad user input.
func NewSchemaValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   "Quote failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError wraps a rate-provider backend that could not be
// constructed. Lookups against a constructed provider never fail; only
// startup wiring can.
func NewProviderUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Rate provider unavailable",
		Details:   fmt.Sprintf("provider: %s: %v", provider, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotifyError wraps a reviewer-notification failure.
func NewNotifyError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotifyFailed,
		Message:   "Reviewer notification failed",
		Details:   fmt.Sprintf("channel: %s: %v", channel, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Inspection Helpers
// ==========================

// Normalize ensures any error is a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetCode extracts the error code, defaulting to INTERNAL_ERROR.
func GetCode(err error) ErrorCode {
	return Normalize(err).Code
}

// IsRetryable reports whether retrying the operation could help.
func IsRetryable(err error) bool {
	return Normalize(err).Retryable
}

// ExitCode maps an error to the process exit code. The CLI contract is a
// plain non-zero exit with a message; no structured code scheme.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
