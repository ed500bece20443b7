package paie

import "github.com/shopspring/decimal"

// Statutory rates and scales for Moroccan payroll. IR and the professional
// expense allowance are computed on an annualized basis (monthly gross x12,
// result /12) because the legal scales are annual.

var (
	// Employee contribution rates
	CNSSEmployeeRate = decimal.RequireFromString("0.0448")
	AMOEmployeeRate  = decimal.RequireFromString("0.0226")

	// CNSS employee and employer contributions apply only up to this
	// monthly salary base.
	CNSSMonthlyCeiling = decimal.NewFromInt(6000)

	// Employer contribution rates (informational on the payslip, not
	// deducted from the employee)
	CNSSEmployerRate = decimal.RequireFromString("0.0898")
	AMOEmployerRate  = decimal.RequireFromString("0.0411")
	TrainingTaxRate  = decimal.RequireFromString("0.016")

	// Professional expense allowance: 20% of annual taxable gross,
	// capped at 30000 MAD per year.
	ProfessionalExpenseRate      = decimal.RequireFromString("0.20")
	ProfessionalExpenseAnnualCap = decimal.NewFromInt(30000)

	// Family charges: 30 MAD per month per dependent person, spouse
	// included, capped at 6 persons.
	FamilyChargePerDependent = decimal.NewFromInt(30)
	MaxDependents            = 6

	MonthsPerYear = decimal.NewFromInt(12)
)

// SeniorityBracket maps a months-of-service lower bound to a bonus rate.
type SeniorityBracket struct {
	MinMonths int
	Rate      decimal.Decimal
}

// SeniorityScale is ordered descending; first matching lower bound wins.
var SeniorityScale = []SeniorityBracket{
	{MinMonths: 301, Rate: decimal.RequireFromString("0.25")},
	{MinMonths: 241, Rate: decimal.RequireFromString("0.20")},
	{MinMonths: 145, Rate: decimal.RequireFromString("0.15")},
	{MinMonths: 61, Rate: decimal.RequireFromString("0.10")},
	{MinMonths: 25, Rate: decimal.RequireFromString("0.05")},
	{MinMonths: 0, Rate: decimal.Zero},
}

// SeniorityRate returns the bonus rate for the given months of service.
func SeniorityRate(months int) decimal.Decimal {
	for _, b := range SeniorityScale {
		if months >= b.MinMonths {
			return b.Rate
		}
	}
	return decimal.Zero
}

// IRBracket is one annual income tax bracket in the fixed-deduction form:
// tax = base*Rate - Deduction for the first bracket whose range contains
// the base. Max is nil on the open-ended top bracket.
type IRBracket struct {
	Min       decimal.Decimal
	Max       *decimal.Decimal
	Rate      decimal.Decimal
	Deduction decimal.Decimal
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// IRScale is the annual progressive scale, contiguous and exhaustive over
// [0, +inf). The fixed deduction constants make the tax continuous across
// bracket edges.
var IRScale = []IRBracket{
	{Min: dec(0), Max: decPtr(30000), Rate: decimal.Zero, Deduction: dec(0)},
	{Min: dec(30001), Max: decPtr(50000), Rate: decimal.RequireFromString("0.10"), Deduction: dec(3000)},
	{Min: dec(50001), Max: decPtr(60000), Rate: decimal.RequireFromString("0.20"), Deduction: dec(8000)},
	{Min: dec(60001), Max: decPtr(80000), Rate: decimal.RequireFromString("0.30"), Deduction: dec(14000)},
	{Min: dec(80001), Max: decPtr(180000), Rate: decimal.RequireFromString("0.34"), Deduction: dec(17200)},
	{Min: dec(180001), Max: nil, Rate: decimal.RequireFromString("0.38"), Deduction: dec(24400)},
}

// AnnualIR applies the IR scale to an annual taxable base. Bases at or
// below zero owe nothing.
func AnnualIR(annualTaxableBase decimal.Decimal) decimal.Decimal {
	if annualTaxableBase.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	for _, b := range IRScale {
		if b.Max != nil && annualTaxableBase.GreaterThan(*b.Max) {
			continue
		}
		tax := annualTaxableBase.Mul(b.Rate).Sub(b.Deduction)
		if tax.IsNegative() {
			return decimal.Zero
		}
		return tax
	}
	return decimal.Zero
}
