package paie

import (
	"testing"

	"github.com/erpmaroc/paie-backend-go/internal/domain/paie"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func baseInput() paie.PayrollInput {
	return paie.PayrollInput{
		EmployeeID:    "emp-1",
		PeriodMonth:   6,
		PeriodYear:    2024,
		BaseSalary:    decimal.NewFromInt(15000),
		MaritalStatus: paie.MaritalStatusSingle,
	}
}

func assertDecimalEqual(t *testing.T, expected string, actual decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "%s = %s, want %s", label, actual, expected)
}

func TestCalculate_ReferencePayslip(t *testing.T) {
	// 15000 MAD base, single, no children, no seniority: the worked
	// example every statutory figure is checked against.
	calc := NewCalculator()
	result := calc.Calculate(baseInput())

	assertDecimalEqual(t, "15000", result.GrossTaxableSalary, "gross taxable")
	assertDecimalEqual(t, "15000", result.GrossGlobalSalary, "gross global")
	assertDecimalEqual(t, "268.80", result.EmployeeCNSS, "employee CNSS")
	assertDecimalEqual(t, "339.00", result.EmployeeAMO, "employee AMO")
	assertDecimalEqual(t, "2500", result.ProfessionalExpenses, "professional expenses")
	assertDecimalEqual(t, "11892.20", result.TaxableNetSalary, "taxable net")
	assertDecimalEqual(t, "2610.01", result.GrossIncomeTax, "gross IR")
	assertDecimalEqual(t, "0", result.FamilyChargeRelief, "family relief")
	assertDecimalEqual(t, "2610.01", result.NetIncomeTax, "net IR")
	assertDecimalEqual(t, "11782.19", result.NetSalary, "net salary")

	assert.Equal(t, "MAD", result.Currency)
}

func TestCalculate_EmployerContributions(t *testing.T) {
	calc := NewCalculator()
	result := calc.Calculate(baseInput())

	// CNSS employer is capped at the same 6000 base as the employee side
	assertDecimalEqual(t, "538.80", result.EmployerCNSS, "employer CNSS")
	assertDecimalEqual(t, "616.50", result.EmployerAMO, "employer AMO")
	assertDecimalEqual(t, "240.00", result.EmployerTrainingTax, "training tax")
	assertDecimalEqual(t, "1395.30", result.EmployerTotalCost, "employer total cost")
}

func TestCalculate_CNSSBelowCeiling(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.BaseSalary = decimal.NewFromInt(5000)

	result := calc.Calculate(input)

	// 5000 is under the 6000 ceiling so the full base contributes
	assertDecimalEqual(t, "224.00", result.EmployeeCNSS, "employee CNSS")
	assertDecimalEqual(t, "449.00", result.EmployerCNSS, "employer CNSS")
}

func TestCalculate_AllowanceUnderCap(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.BaseSalary = decimal.NewFromInt(10000)

	result := calc.Calculate(input)

	// annual 120000 * 20% = 24000, under the 30000 cap
	assertDecimalEqual(t, "2000", result.ProfessionalExpenses, "professional expenses")
}

func TestCalculate_SeniorityBonus(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.SeniorityMonths = 61

	result := calc.Calculate(input)

	assertDecimalEqual(t, "0.10", result.SeniorityRate, "seniority rate")
	assertDecimalEqual(t, "1500.00", result.SeniorityBonus, "seniority bonus")
	assertDecimalEqual(t, "16500", result.GrossTaxableSalary, "gross taxable")
}

func TestCalculate_FamilyReliefSpouseAndChildren(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.MaritalStatus = paie.MaritalStatusMarried
	input.DependentChildren = 2

	result := calc.Calculate(input)

	// spouse + 2 children = 3 dependents at 30 MAD each
	assertDecimalEqual(t, "90.00", result.FamilyChargeRelief, "family relief")
	assertDecimalEqual(t, "2520.01", result.NetIncomeTax, "net IR")
}

func TestCalculate_FamilyReliefCappedAtSix(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.MaritalStatus = paie.MaritalStatusMarried
	input.DependentChildren = 9

	result := calc.Calculate(input)

	assertDecimalEqual(t, "180.00", result.FamilyChargeRelief, "family relief")
}

func TestCalculate_NetIRNeverNegative(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.BaseSalary = decimal.NewFromInt(4000)
	input.MaritalStatus = paie.MaritalStatusMarried
	input.DependentChildren = 2

	result := calc.Calculate(input)

	// gross IR is about 43 MAD, the 90 MAD relief floors it at zero
	assert.True(t, result.GrossIncomeTax.IsPositive())
	assertDecimalEqual(t, "0", result.NetIncomeTax, "net IR")
}

func TestCalculate_NoIRBelowExemptThreshold(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.BaseSalary = decimal.NewFromInt(3000)

	result := calc.Calculate(input)

	assertDecimalEqual(t, "0", result.GrossIncomeTax, "gross IR")
	assertDecimalEqual(t, "0", result.NetIncomeTax, "net IR")
}

func TestCalculate_OvertimeAndBonuses(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.TaxableBonuses = decimal.NewFromInt(1000)
	input.NonTaxableBonuses = decimal.NewFromInt(500)
	input.OvertimeHours = decimal.NewFromInt(10)
	input.OvertimeRate = decimal.NewFromInt(100)

	result := calc.Calculate(input)

	assertDecimalEqual(t, "1000.00", result.OvertimeAmount, "overtime amount")
	// base + taxable bonus + overtime
	assertDecimalEqual(t, "17000", result.GrossTaxableSalary, "gross taxable")
	// non-taxable bonus only widens the global gross
	assertDecimalEqual(t, "17500", result.GrossGlobalSalary, "gross global")
}

func TestCalculate_PayslipIdentityHoldsToTheCent(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.CIMRRate = d("0.03")
	input.InsuranceRate = d("0.015")
	input.OtherDeductions = d("250.50")
	input.MaritalStatus = paie.MaritalStatusMarried
	input.DependentChildren = 1

	result := calc.Calculate(input)

	derived := result.GrossGlobalSalary.
		Sub(result.EmployeeCNSS).
		Sub(result.EmployeeAMO).
		Sub(result.EmployeeCIMR).
		Sub(result.EmployeeInsurance).
		Sub(result.NetIncomeTax).
		Sub(result.OtherDeductions)

	assert.True(t, derived.Equal(result.NetSalary),
		"net salary %s does not match derived %s", result.NetSalary, derived)
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewCalculator()
	input := baseInput()
	input.SeniorityMonths = 150
	input.CIMRRate = d("0.06")

	first := calc.Calculate(input)
	second := calc.Calculate(input)

	require.True(t, first.NetSalary.Equal(second.NetSalary))
	require.True(t, first.NetIncomeTax.Equal(second.NetIncomeTax))
	require.True(t, first.GrossGlobalSalary.Equal(second.GrossGlobalSalary))
	require.True(t, first.EmployerTotalCost.Equal(second.EmployerTotalCost))
}
