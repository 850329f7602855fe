// Package errors provides standardized error codes shared by the HTTP API and the
// Zeebe job workers, plus conversion to BPMN errors.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeApplicantNotFound ErrorCode = "APPLICANT_NOT_FOUND"
	ErrCodeProductNotFound   ErrorCode = "PRODUCT_NOT_FOUND"

	ErrCodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"
	ErrCodeIDMismatch        ErrorCode = "ID_MISMATCH"

	ErrCodeApplicantValidationFailed   ErrorCode = "APPLICANT_VALIDATION_FAILED"
	ErrCodeProductValidationFailed     ErrorCode = "PRODUCT_VALIDATION_FAILED"
	ErrCodeEligibilityValidationFailed ErrorCode = "ELIGIBILITY_VALIDATION_FAILED"

	ErrCodeStorageConflict          ErrorCode = "STORAGE_CONFLICT"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeLockUnavailable          ErrorCode = "LOCK_UNAVAILABLE"

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

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
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
// 3. Error Constructors
// ==========================

// NewApplicantNotFoundError creates a non-retryable lookup error.
func NewApplicantNotFoundError(id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicantNotFound,
		Message:   "Applicant not found",
		Details:   fmt.Sprintf("applicantId: %d", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProductNotFoundError creates a non-retryable lookup error.
func NewProductNotFoundError(id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductNotFound,
		Message:   "Product not found",
		Details:   fmt.Sprintf("productId: %d", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidIdentifierError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidIdentifier,
		Message:   "Identifier must be a positive integer",
		Details:   fmt.Sprintf("id: %q", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewIDMismatchError(pathID, bodyID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeIDMismatch,
		Message:   "Path id does not match payload id",
		Details:   fmt.Sprintf("path: %d, payload: %d", pathID, bodyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError wraps a field-keyed violation map. The map travels in
// Metadata["validationErrors"] so it reaches BPMN error variables.
func NewValidationFailedError(code ErrorCode, message string, violations interface{}) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	return e.WithMetadata("validationErrors", violations)
}

func NewStorageConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageConflict,
		Message:   "Record changed concurrently",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable query error.
func NewDatabaseQueryFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLockUnavailableError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLockUnavailable,
		Message:   "Could not acquire create lock",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeApplicantNotFound:           "APPLICANT_NOT_FOUND",
	ErrCodeProductNotFound:             "PRODUCT_NOT_FOUND",
	ErrCodeInvalidIdentifier:           "INVALID_IDENTIFIER",
	ErrCodeIDMismatch:                  "ID_MISMATCH",
	ErrCodeApplicantValidationFailed:   "APPLICANT_VALIDATION_FAILED",
	ErrCodeProductValidationFailed:     "PRODUCT_VALIDATION_FAILED",
	ErrCodeEligibilityValidationFailed: "ELIGIBILITY_VALIDATION_FAILED",
	ErrCodeStorageConflict:             "STORAGE_CONFLICT",
	ErrCodeDatabaseConnectionFailed:    "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseQueryFailed:         "DATABASE_QUERY_FAILED",
	ErrCodeDatabaseInsertFailed:        "DATABASE_INSERT_FAILED",
	ErrCodeLockUnavailable:             "LOCK_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeDatabaseInsertFailed:
		return 3

	case ErrCodeLockUnavailable:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "STORAGE") || strings.Contains(codeStr, "LOCK"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "MISMATCH"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
