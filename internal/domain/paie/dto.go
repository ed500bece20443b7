package paie

import (
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// CalculateRequest is the raw API payload. Optional rates stay pointers
// here; Resolve turns the request into a fully-defaulted PayrollInput.
type CalculateRequest struct {
	EmployeeID        string           `json:"employee_id"`
	PeriodMonth       int              `json:"period_month"`
	PeriodYear        int              `json:"period_year"`
	BaseSalary        decimal.Decimal  `json:"base_salary"`
	SeniorityMonths   int              `json:"seniority_months"`
	TaxableBonuses    *decimal.Decimal `json:"taxable_bonuses,omitempty"`
	NonTaxableBonuses *decimal.Decimal `json:"non_taxable_bonuses,omitempty"`
	OvertimeHours     *decimal.Decimal `json:"overtime_hours,omitempty"`
	OvertimeRate      *decimal.Decimal `json:"overtime_rate,omitempty"`
	MaritalStatus     string           `json:"marital_status"`
	DependentChildren int              `json:"dependent_children"`
	CIMRRate          *decimal.Decimal `json:"cimr_rate,omitempty"`
	InsuranceRate     *decimal.Decimal `json:"insurance_rate,omitempty"`
	OtherDeductions   *decimal.Decimal `json:"other_deductions,omitempty"`
}

func (r *CalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be a valid year"})
	}
	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.SeniorityMonths < 0 {
		errs = append(errs, validator.ValidationError{Field: "seniority_months", Message: "must be non-negative"})
	}
	if r.DependentChildren < 0 {
		errs = append(errs, validator.ValidationError{Field: "dependent_children", Message: "must be non-negative"})
	}
	if !MaritalStatus(r.MaritalStatus).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "marital_status", Message: "must be 'single', 'married', 'divorced' or 'widowed'"})
	}
	for field, v := range map[string]*decimal.Decimal{
		"taxable_bonuses":     r.TaxableBonuses,
		"non_taxable_bonuses": r.NonTaxableBonuses,
		"overtime_hours":      r.OvertimeHours,
		"overtime_rate":       r.OvertimeRate,
		"cimr_rate":           r.CIMRRate,
		"insurance_rate":      r.InsuranceRate,
		"other_deductions":    r.OtherDeductions,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Resolve builds the defaulted PayrollInput. Call Validate first; Resolve
// does not re-check ranges.
func (r *CalculateRequest) Resolve() PayrollInput {
	orZero := func(v *decimal.Decimal) decimal.Decimal {
		if v == nil {
			return decimal.Zero
		}
		return *v
	}

	return PayrollInput{
		EmployeeID:        r.EmployeeID,
		PeriodMonth:       r.PeriodMonth,
		PeriodYear:        r.PeriodYear,
		BaseSalary:        r.BaseSalary,
		SeniorityMonths:   r.SeniorityMonths,
		TaxableBonuses:    orZero(r.TaxableBonuses),
		NonTaxableBonuses: orZero(r.NonTaxableBonuses),
		OvertimeHours:     orZero(r.OvertimeHours),
		OvertimeRate:      orZero(r.OvertimeRate),
		MaritalStatus:     MaritalStatus(r.MaritalStatus),
		DependentChildren: r.DependentChildren,
		CIMRRate:          orZero(r.CIMRRate),
		InsuranceRate:     orZero(r.InsuranceRate),
		OtherDeductions:   orZero(r.OtherDeductions),
	}
}

type PayrollResultResponse struct {
	EmployeeID  string `json:"employee_id"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`

	BaseSalary     decimal.Decimal `json:"base_salary"`
	SeniorityRate  decimal.Decimal `json:"seniority_rate"`
	SeniorityBonus decimal.Decimal `json:"seniority_bonus"`
	OvertimeAmount decimal.Decimal `json:"overtime_amount"`

	GrossTaxableSalary decimal.Decimal `json:"gross_taxable_salary"`
	GrossGlobalSalary  decimal.Decimal `json:"gross_global_salary"`

	EmployeeCNSS      decimal.Decimal `json:"employee_cnss"`
	EmployeeAMO       decimal.Decimal `json:"employee_amo"`
	EmployeeCIMR      decimal.Decimal `json:"employee_cimr"`
	EmployeeInsurance decimal.Decimal `json:"employee_insurance"`

	ProfessionalExpenses decimal.Decimal `json:"professional_expenses"`
	TaxableNetSalary     decimal.Decimal `json:"taxable_net_salary"`
	GrossIncomeTax       decimal.Decimal `json:"gross_income_tax"`
	FamilyChargeRelief   decimal.Decimal `json:"family_charge_relief"`
	NetIncomeTax         decimal.Decimal `json:"net_income_tax"`

	OtherDeductions decimal.Decimal `json:"other_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	EmployerCNSS        decimal.Decimal `json:"employer_cnss"`
	EmployerAMO         decimal.Decimal `json:"employer_amo"`
	EmployerTrainingTax decimal.Decimal `json:"employer_training_tax"`
	EmployerTotalCost   decimal.Decimal `json:"employer_total_cost"`

	Currency   string `json:"currency"`
	ComputedAt string `json:"computed_at"`
}

func ToResultResponse(r PayrollResult) PayrollResultResponse {
	return PayrollResultResponse{
		EmployeeID:           r.EmployeeID,
		PeriodMonth:          r.PeriodMonth,
		PeriodYear:           r.PeriodYear,
		BaseSalary:           r.BaseSalary,
		SeniorityRate:        r.SeniorityRate,
		SeniorityBonus:       r.SeniorityBonus,
		OvertimeAmount:       r.OvertimeAmount,
		GrossTaxableSalary:   r.GrossTaxableSalary,
		GrossGlobalSalary:    r.GrossGlobalSalary,
		EmployeeCNSS:         r.EmployeeCNSS,
		EmployeeAMO:          r.EmployeeAMO,
		EmployeeCIMR:         r.EmployeeCIMR,
		EmployeeInsurance:    r.EmployeeInsurance,
		ProfessionalExpenses: r.ProfessionalExpenses,
		TaxableNetSalary:     r.TaxableNetSalary,
		GrossIncomeTax:       r.GrossIncomeTax,
		FamilyChargeRelief:   r.FamilyChargeRelief,
		NetIncomeTax:         r.NetIncomeTax,
		OtherDeductions:      r.OtherDeductions,
		NetSalary:            r.NetSalary,
		EmployerCNSS:         r.EmployerCNSS,
		EmployerAMO:          r.EmployerAMO,
		EmployerTrainingTax:  r.EmployerTrainingTax,
		EmployerTotalCost:    r.EmployerTotalCost,
		Currency:             r.Currency,
		ComputedAt:           r.ComputedAt.Format(time.RFC3339),
	}
}
