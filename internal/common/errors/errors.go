// Package errors provides standardized error handling for the HTTP API.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is the machine readable value sent in the "error" field.
type ErrorCode string

const (
	ErrCodeInvalidInput     ErrorCode = "invalid_input"
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeRateLimited      ErrorCode = "rate_limited"
	ErrCodeMethodNotAllowed ErrorCode = "method_not_allowed"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodePayloadTooLarge  ErrorCode = "payload_too_large"

	ErrCodeTTSFailed       ErrorCode = "tts_failed"
	ErrCodeUpstreamTimeout ErrorCode = "upstream_timeout"

	ErrCodeInternal ErrorCode = "internal_error"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"error"`
	Message   string    `json:"message"`
	Details   string    `json:"-"`
	Retryable bool      `json:"-"`
	Status    int       `json:"-"`
	Timestamp time.Time `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus returns the response status for the error, falling back to the
// code's default when Status was not set explicitly.
func (e *StandardError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return StatusForCode(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError reports a request body that failed validation.
func NewInvalidInputError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   message,
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

// NewBadRequestError reports a request that could not be read at all.
func NewBadRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBadRequest,
		Message:   "The request could not be processed.",
		Details:   details,
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

func NewRateLimitedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Please slow down; try again in a minute.",
		Retryable: true,
		Status:    http.StatusTooManyRequests,
		Timestamp: time.Now().UTC(),
	}
}

func NewMethodNotAllowedError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   fmt.Sprintf("Method %s is not allowed on this route.", method),
		Status:    http.StatusMethodNotAllowed,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Route not found.",
		Details:   fmt.Sprintf("path: %s", path),
		Status:    http.StatusNotFound,
		Timestamp: time.Now().UTC(),
	}
}

func NewPayloadTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadTooLarge,
		Message:   fmt.Sprintf("Request body is larger than %d bytes.", limit),
		Status:    http.StatusRequestEntityTooLarge,
		Timestamp: time.Now().UTC(),
	}
}

// NewTTSFailedError reports a speech synthesis call that reached the
// provider and failed.
func NewTTSFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTTSFailed,
		Message:   "Text-to-speech request failed. Try again shortly.",
		Details:   errDetails(err),
		Retryable: true,
		Status:    http.StatusBadGateway,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError reports a provider call that ran out of time.
func NewUpstreamTimeoutError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   fmt.Sprintf("Service '%s' timed out.", service),
		Retryable: true,
		Status:    http.StatusGatewayTimeout,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected server error.",
		Details:   errDetails(err),
		Status:    http.StatusInternalServerError,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Utility Functions
// ==========================

// StatusForCode maps an error code to its default HTTP status.
func StatusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeTTSFailed:
		return http.StatusBadGateway
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory groups codes for log aggregation.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "input") || strings.Contains(codeStr, "request"):
		return "VALIDATION"
	case code == ErrCodeRateLimited:
		return "RATE_LIMIT"
	case strings.Contains(codeStr, "tts") || strings.Contains(codeStr, "gemini") || strings.Contains(codeStr, "upstream"):
		return "UPSTREAM"
	case code == ErrCodeMethodNotAllowed || code == ErrCodeNotFound:
		return "ROUTING"
	default:
		return "OTHER"
	}
}
