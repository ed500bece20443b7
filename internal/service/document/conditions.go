package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/domain/employee"
)

// conditionEvaluator resolves the named preconditions of the transition
// table against document, employee and context state.
type conditionEvaluator struct {
	employeeRepo employee.EmployeeRepository
}

func newConditionEvaluator(employeeRepo employee.EmployeeRepository) *conditionEvaluator {
	return &conditionEvaluator{employeeRepo: employeeRepo}
}

// evaluate returns ok=false with a nil error when the condition simply
// does not hold; a non-nil error means the check itself could not run.
func (e *conditionEvaluator) evaluate(ctx context.Context, cond document.Condition, doc document.Metadata, tctx document.TransitionContext) (bool, error) {
	switch cond {
	case document.ConditionEmployeeDataValid:
		emp, err := e.employeeRepo.GetByID(ctx, doc.EmployeeID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to load employee %s: %w", doc.EmployeeID, err)
		}
		return emp.PayrollReady(), nil

	case document.ConditionPayrollCalculationComplete:
		return doc.Payroll.Currency != "" && doc.Payroll.GrossSalary.IsPositive(), nil

	case document.ConditionPreviewViewed:
		v, ok := tctx.Metadata["previewViewed"]
		if !ok {
			return false, nil
		}
		viewed, ok := v.(bool)
		return ok && viewed, nil

	case document.ConditionApproverAuthorized:
		// Actors never approve their own payslip.
		return tctx.ActorID != "" && tctx.ActorID != doc.EmployeeID, nil

	case document.ConditionFileStored:
		return doc.Storage != nil || tctx.Storage != nil, nil

	case document.ConditionDistributionReady:
		return len(tctx.RecipientList()) > 0 || len(doc.Recipients) > 0, nil
	}

	// Unknown condition names fail closed.
	return false, nil
}
