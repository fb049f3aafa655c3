// Package errors provides the failure taxonomy shared by agency clients,
// the assistant and the job workers, plus BPMN error conversion.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Failure kinds
// ==========================

// FailureKind is the machine-readable class of a failure.
type FailureKind string

const (
	KindNone              FailureKind = ""
	KindValidation        FailureKind = "validation"
	KindTransport         FailureKind = "transport"
	KindDecode            FailureKind = "decode"
	KindUnrecognizedShape FailureKind = "unrecognized_shape"
	KindTimeout           FailureKind = "timeout"
	KindUnavailable       FailureKind = "unavailable"
)

// ==========================
// 2. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"

	ErrCodeAgencyHTTPStatus ErrorCode = "AGENCY_HTTP_STATUS"
	ErrCodeAgencyTransport  ErrorCode = "AGENCY_TRANSPORT_FAILED"
	ErrCodeAgencyDecode     ErrorCode = "AGENCY_DECODE_FAILED"
	ErrCodeAgencyShape      ErrorCode = "AGENCY_UNRECOGNIZED_SHAPE"
	ErrCodeAgencyTimeout    ErrorCode = "AGENCY_TIMEOUT"

	ErrCodeAssistantUnavailable ErrorCode = "ASSISTANT_UNAVAILABLE"
	ErrCodeAssistantFailed      ErrorCode = "ASSISTANT_GENERATION_FAILED"
	ErrCodeAssistantTimeout     ErrorCode = "ASSISTANT_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      FailureKind            `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata sets one metadata entry and returns the receiver.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// KindOf returns the failure kind carried by err, or KindTransport for
// errors that carry none. Context deadline errors map to KindTimeout.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) && stdErr.Kind != KindNone {
		return stdErr.Kind
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindTransport
}

// ==========================
// 3. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 4. Error Constructors
// ==========================

func newError(code ErrorCode, kind FailureKind, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError reports caller input that was rejected before any I/O.
func NewValidationError(message string) *StandardError {
	return newError(ErrCodeValidationFailed, KindValidation, message, "", false, nil)
}

// NewInvalidInputError reports job variables that failed schema validation.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, KindValidation, "Invalid job input", details, false, nil)
}

// NewAgencyStatusError reports a non-success HTTP status from an agency.
func NewAgencyStatusError(agency string, statusCode int, status string) *StandardError {
	if status == "" {
		status = fmt.Sprintf("%d", statusCode)
	}
	return newError(ErrCodeAgencyHTTPStatus, KindTransport,
		fmt.Sprintf("%s API error: %s", agency, status), "", statusCode >= 500, nil).
		WithMetadata("statusCode", statusCode)
}

// NewAgencyTransportError reports a failed or cancelled request.
func NewAgencyTransportError(agency string, err error) *StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return newError(ErrCodeAgencyTimeout, KindTimeout,
			fmt.Sprintf("%s API timeout", agency), err.Error(), true, err)
	}
	return newError(ErrCodeAgencyTransport, KindTransport,
		fmt.Sprintf("%s API request failed", agency), err.Error(), true, err)
}

// NewAgencyDecodeError reports a body that could not be parsed.
func NewAgencyDecodeError(agency string, err error) *StandardError {
	return newError(ErrCodeAgencyDecode, KindDecode,
		fmt.Sprintf("%s response could not be decoded", agency), err.Error(), false, err)
}

// NewUnrecognizedShapeError reports a parseable body matching none of the
// expected response shapes.
func NewUnrecognizedShapeError(agency string) *StandardError {
	return newError(ErrCodeAgencyShape, KindUnrecognizedShape,
		fmt.Sprintf("%s response has an unrecognized shape", agency), "", false, nil)
}

func NewAssistantUnavailableError() *StandardError {
	return newError(ErrCodeAssistantUnavailable, KindUnavailable,
		"Gemini API not configured", "set GEMINI_API_KEY to enable assistant features", false, nil)
}

// NewAssistantFailedError wraps a generation failure; deadline errors become
// ErrCodeAssistantTimeout.
func NewAssistantFailedError(operation string, err error) *StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return newError(ErrCodeAssistantTimeout, KindTimeout,
			"Assistant call timeout", fmt.Sprintf("operation: %s", operation), true, err)
	}
	return newError(ErrCodeAssistantFailed, KindTransport,
		"Assistant generation failed", fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAgencyTransport,
		ErrCodeAgencyHTTPStatus,
		ErrCodeAssistantFailed:
		return 3

	case ErrCodeAgencyTimeout,
		ErrCodeAssistantTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"failureKind":       string(stdErr.Kind),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "AGENCY"):
		return "AGENCY"
	case strings.HasPrefix(codeStr, "ASSISTANT"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
