package document

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrAuditEntryNotFound = errors.New("audit entry not found")
	ErrDocumentExists     = errors.New("document already exists for this employee and period")
)

// ErrorCode is a stable machine-readable failure code.
type ErrorCode string

const (
	CodeDocumentNotFound          ErrorCode = "DOCUMENT_NOT_FOUND"
	CodeInvalidStatusTransition   ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeApprovalRequired          ErrorCode = "APPROVAL_REQUIRED"
	CodeStorageFailure            ErrorCode = "STORAGE_FAILURE"
	CodeDatabaseConnectionFailure ErrorCode = "DATABASE_CONNECTION_FAILURE"
)

// Severity of a failure, for observability triage.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// EngineError is the discriminated failure shape every workflow operation
// returns. Detail names the specific failing precondition or business
// rule so the UI can explain why, not just that, an action was rejected.
type EngineError struct {
	Code      ErrorCode
	Message   string
	Detail    string
	Severity  Severity
	Retryable bool
	Operation string
	Component string
	Err       error
}

func (e *EngineError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EngineError) Unwrap() error { return e.Err }

// AsEngineError unwraps err into an *EngineError if it carries one.
func AsEngineError(err error) (*EngineError, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}

func NewNotFoundError(operation, documentID string) *EngineError {
	return &EngineError{
		Code:      CodeDocumentNotFound,
		Message:   "document not found",
		Detail:    documentID,
		Severity:  SeverityLow,
		Retryable: false,
		Operation: operation,
		Component: "document-status-engine",
	}
}

func NewInvalidTransitionError(operation, detail string, from, to Status) *EngineError {
	return &EngineError{
		Code:      CodeInvalidStatusTransition,
		Message:   fmt.Sprintf("transition %s -> %s is not allowed", from, to),
		Detail:    detail,
		Severity:  SeverityMedium,
		Retryable: false,
		Operation: operation,
		Component: "document-status-engine",
	}
}

func NewApprovalRequiredError(operation string, from, to Status) *EngineError {
	return &EngineError{
		Code:      CodeApprovalRequired,
		Message:   fmt.Sprintf("transition %s -> %s requires explicit approval", from, to),
		Severity:  SeverityHigh,
		Retryable: false,
		Operation: operation,
		Component: "document-status-engine",
	}
}

func NewStorageFailureError(operation string, err error) *EngineError {
	return &EngineError{
		Code:      CodeStorageFailure,
		Message:   "storage operation failed",
		Severity:  SeverityHigh,
		Retryable: false,
		Operation: operation,
		Component: "file-storage",
		Err:       err,
	}
}

func NewConnectionFailureError(operation string, err error) *EngineError {
	return &EngineError{
		Code:      CodeDatabaseConnectionFailure,
		Message:   "database operation failed",
		Severity:  SeverityCritical,
		Retryable: true,
		Operation: operation,
		Component: "postgresql",
		Err:       err,
	}
}
