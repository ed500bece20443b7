package employee

import (
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/paie"
	"github.com/shopspring/decimal"
)

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusResigned EmploymentStatus = "resigned"
)

// Employee is the read model the payroll and workflow engines consume.
// The full employee record lives in the surrounding HR application; only
// the fields payroll needs are carried here.
type Employee struct {
	ID                string
	EmployeeCode      string
	FullName          string
	Email             string
	CIN               string
	HireDate          time.Time
	EmploymentStatus  EmploymentStatus
	MaritalStatus     paie.MaritalStatus
	DependentChildren int
	BaseSalary        *decimal.Decimal
	CIMRRate          *decimal.Decimal
	InsuranceRate     *decimal.Decimal
	BankName          *string
	BankAccountNumber *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SeniorityMonths returns whole months of service at the given date.
func (e Employee) SeniorityMonths(at time.Time) int {
	if at.Before(e.HireDate) {
		return 0
	}
	years := at.Year() - e.HireDate.Year()
	months := int(at.Month()) - int(e.HireDate.Month())
	total := years*12 + months
	if at.Day() < e.HireDate.Day() {
		total--
	}
	if total < 0 {
		return 0
	}
	return total
}

// PayrollReady reports whether the record carries everything a payslip
// calculation needs.
func (e Employee) PayrollReady() bool {
	return e.EmploymentStatus == EmploymentStatusActive &&
		e.BaseSalary != nil && !e.BaseSalary.IsNegative() &&
		e.MaritalStatus.IsValid()
}
