package paie

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaritalStatus enum
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "single"
	MaritalStatusMarried  MaritalStatus = "married"
	MaritalStatusDivorced MaritalStatus = "divorced"
	MaritalStatusWidowed  MaritalStatus = "widowed"
)

func (m MaritalStatus) IsValid() bool {
	switch m {
	case MaritalStatusSingle, MaritalStatusMarried, MaritalStatusDivorced, MaritalStatusWidowed:
		return true
	}
	return false
}

// PayrollInput is the fully-resolved request for one employee and one pay
// period. Optional rates (CIMR, insurance) are resolved to zero at the
// boundary so the engine never branches on absence.
type PayrollInput struct {
	EmployeeID        string
	PeriodMonth       int
	PeriodYear        int
	BaseSalary        decimal.Decimal
	SeniorityMonths   int
	TaxableBonuses    decimal.Decimal
	NonTaxableBonuses decimal.Decimal
	OvertimeHours     decimal.Decimal
	OvertimeRate      decimal.Decimal
	MaritalStatus     MaritalStatus
	DependentChildren int
	CIMRRate          decimal.Decimal
	InsuranceRate     decimal.Decimal
	OtherDeductions   decimal.Decimal
}

// PayrollResult is the full statutory breakdown for one payslip.
// Recomputing from an identical PayrollInput yields identical values;
// ComputedAt is the only field excluded from that equality.
type PayrollResult struct {
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int

	BaseSalary     decimal.Decimal
	SeniorityRate  decimal.Decimal
	SeniorityBonus decimal.Decimal
	OvertimeAmount decimal.Decimal

	GrossTaxableSalary decimal.Decimal
	GrossGlobalSalary  decimal.Decimal

	EmployeeCNSS      decimal.Decimal
	EmployeeAMO       decimal.Decimal
	EmployeeCIMR      decimal.Decimal
	EmployeeInsurance decimal.Decimal

	ProfessionalExpenses decimal.Decimal
	TaxableNetSalary     decimal.Decimal
	GrossIncomeTax       decimal.Decimal
	FamilyChargeRelief   decimal.Decimal
	NetIncomeTax         decimal.Decimal

	OtherDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	EmployerCNSS        decimal.Decimal
	EmployerAMO         decimal.Decimal
	EmployerTrainingTax decimal.Decimal
	EmployerTotalCost   decimal.Decimal

	Currency   string
	ComputedAt time.Time
}
