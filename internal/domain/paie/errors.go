package paie

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeHasNoSalary   = errors.New("employee has no base salary configured")
	ErrInvalidPeriod         = errors.New("invalid payroll period")
	ErrPayslipAlreadyExists  = errors.New("payslip document already exists for this period")
	ErrInvalidMaritalStatus  = errors.New("invalid marital status")
	ErrNegativeMonetaryField = errors.New("monetary fields must be non-negative")
)
