package response

import (
	"errors"
	"net/http"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/domain/employee"
	"github.com/erpmaroc/paie-backend-go/internal/domain/paie"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Workflow engine errors carry their own code and detail
	if engineErr, ok := document.AsEngineError(err); ok {
		handleEngineError(w, engineErr)
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, paie.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, paie.ErrEmployeeHasNoSalary):
		BadRequest(w, "Employee has no base salary configured", nil)
	case errors.Is(err, paie.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, paie.ErrInvalidMaritalStatus):
		BadRequest(w, "Invalid marital status", nil)
	case errors.Is(err, paie.ErrNegativeMonetaryField):
		BadRequest(w, "Monetary fields must not be negative", nil)
	case errors.Is(err, paie.ErrPayslipAlreadyExists):
		Conflict(w, "Payslip already exists for this employee and period")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Document domain errors outside the engine's taxonomy
	case errors.Is(err, document.ErrDocumentNotFound):
		NotFound(w, "Document not found")
	case errors.Is(err, document.ErrAuditEntryNotFound):
		NotFound(w, "Audit entry not found")
	case errors.Is(err, document.ErrDocumentExists):
		Conflict(w, "Document already exists for this employee and period")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

func handleEngineError(w http.ResponseWriter, engineErr *document.EngineError) {
	var details map[string]string
	if engineErr.Detail != "" {
		details = map[string]string{"detail": engineErr.Detail}
	}

	switch engineErr.Code {
	case document.CodeDocumentNotFound:
		NotFound(w, engineErr.Message)
	case document.CodeInvalidStatusTransition:
		writeJSON(w, http.StatusConflict, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    string(engineErr.Code),
				Message: engineErr.Message,
				Details: details,
			},
		})
	case document.CodeApprovalRequired:
		writeJSON(w, http.StatusForbidden, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    string(engineErr.Code),
				Message: engineErr.Message,
				Details: details,
			},
		})
	case document.CodeStorageFailure, document.CodeDatabaseConnectionFailure:
		if engineErr.Retryable {
			ServiceUnavailable(w, string(engineErr.Code), engineErr.Message)
			return
		}
		InternalServerError(w, engineErr.Message)
	default:
		InternalServerError(w, engineErr.Message)
	}
}
