package paie

import (
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/paie"
	"github.com/shopspring/decimal"
)

// Calculator computes the full statutory breakdown for one payslip.
// It holds no state and performs no I/O; Calculate is a total function
// over validated input and is safe to call concurrently.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate runs the payroll computation for one employee and one period.
// Negative or malformed monetary inputs are a caller contract violation;
// validate the request before resolving it into a PayrollInput.
//
// IR and the professional expense allowance are computed on an annual
// basis (x12) and brought back to the month (/12), because the legal
// scales are annual. Intermediate values keep full precision; every
// result field is rounded to 2 decimals at construction, and the net
// salary is derived from the rounded components so the payslip identity
// holds to the cent.
func (c *Calculator) Calculate(input paie.PayrollInput) paie.PayrollResult {
	// 1. Seniority bonus
	seniorityRate := paie.SeniorityRate(input.SeniorityMonths)
	seniorityBonus := input.BaseSalary.Mul(seniorityRate)

	// 2. Gross pay
	overtimeAmount := input.OvertimeHours.Mul(input.OvertimeRate)
	grossTaxable := input.BaseSalary.Add(seniorityBonus).Add(input.TaxableBonuses).Add(overtimeAmount)
	grossGlobal := grossTaxable.Add(input.NonTaxableBonuses)

	// 3. Employee social contributions
	cnssBase := decimal.Min(grossTaxable, paie.CNSSMonthlyCeiling)
	employeeCNSS := cnssBase.Mul(paie.CNSSEmployeeRate)
	employeeAMO := grossTaxable.Mul(paie.AMOEmployeeRate)
	employeeCIMR := grossTaxable.Mul(input.CIMRRate)
	employeeInsurance := grossTaxable.Mul(input.InsuranceRate)

	// 4. Professional expense allowance, annualized then brought back
	// to a monthly share of the annual cap
	annualGross := grossTaxable.Mul(paie.MonthsPerYear)
	annualAllowance := decimal.Min(annualGross.Mul(paie.ProfessionalExpenseRate), paie.ProfessionalExpenseAnnualCap)
	monthlyAllowance := annualAllowance.Div(paie.MonthsPerYear)

	// 5. Income tax on the annual taxable base
	monthlyContributions := employeeCNSS.Add(employeeAMO).Add(employeeCIMR).Add(employeeInsurance)
	taxableNet := grossTaxable.Sub(monthlyContributions).Sub(monthlyAllowance)
	annualTaxableBase := taxableNet.Mul(paie.MonthsPerYear)
	grossIR := paie.AnnualIR(annualTaxableBase).Div(paie.MonthsPerYear)
	if grossIR.IsNegative() {
		grossIR = decimal.Zero
	}

	// 6. Family charge relief, spouse counts as one dependent
	dependents := input.DependentChildren
	if input.MaritalStatus == paie.MaritalStatusMarried {
		dependents++
	}
	if dependents > paie.MaxDependents {
		dependents = paie.MaxDependents
	}
	familyRelief := paie.FamilyChargePerDependent.Mul(decimal.NewFromInt(int64(dependents)))
	netIR := grossIR.Sub(familyRelief)
	if netIR.IsNegative() {
		netIR = decimal.Zero
	}

	// 8. Employer contributions
	employerCNSS := cnssBase.Mul(paie.CNSSEmployerRate)
	employerAMO := grossTaxable.Mul(paie.AMOEmployerRate)
	trainingTax := grossTaxable.Mul(paie.TrainingTaxRate)

	result := paie.PayrollResult{
		EmployeeID:  input.EmployeeID,
		PeriodMonth: input.PeriodMonth,
		PeriodYear:  input.PeriodYear,

		BaseSalary:     input.BaseSalary.Round(2),
		SeniorityRate:  seniorityRate,
		SeniorityBonus: seniorityBonus.Round(2),
		OvertimeAmount: overtimeAmount.Round(2),

		GrossTaxableSalary: grossTaxable.Round(2),
		GrossGlobalSalary:  grossGlobal.Round(2),

		EmployeeCNSS:      employeeCNSS.Round(2),
		EmployeeAMO:       employeeAMO.Round(2),
		EmployeeCIMR:      employeeCIMR.Round(2),
		EmployeeInsurance: employeeInsurance.Round(2),

		ProfessionalExpenses: monthlyAllowance.Round(2),
		TaxableNetSalary:     taxableNet.Round(2),
		GrossIncomeTax:       grossIR.Round(2),
		FamilyChargeRelief:   familyRelief.Round(2),
		NetIncomeTax:         netIR.Round(2),

		OtherDeductions: input.OtherDeductions.Round(2),

		EmployerCNSS:        employerCNSS.Round(2),
		EmployerAMO:         employerAMO.Round(2),
		EmployerTrainingTax: trainingTax.Round(2),

		Currency:   "MAD",
		ComputedAt: time.Now().UTC(),
	}

	// 7. Net salary, derived from the rounded components so that
	// gross - deductions - tax equals the printed net exactly
	result.NetSalary = result.GrossGlobalSalary.
		Sub(result.EmployeeCNSS).
		Sub(result.EmployeeAMO).
		Sub(result.EmployeeCIMR).
		Sub(result.EmployeeInsurance).
		Sub(result.NetIncomeTax).
		Sub(result.OtherDeductions)

	result.EmployerTotalCost = result.EmployerCNSS.
		Add(result.EmployerAMO).
		Add(result.EmployerTrainingTax)

	return result
}
