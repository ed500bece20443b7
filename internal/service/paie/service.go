package paie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/domain/employee"
	"github.com/erpmaroc/paie-backend-go/internal/domain/paie"
	documentService "github.com/erpmaroc/paie-backend-go/internal/service/document"
	"github.com/shopspring/decimal"
)

// Service drives payroll calculations and hands their results to the
// document workflow as opaque payloads. It never re-validates the
// engine's arithmetic downstream.
type Service struct {
	calculator   *Calculator
	employeeRepo employee.EmployeeRepository
	documents    *documentService.Service
}

func NewService(calculator *Calculator, employeeRepo employee.EmployeeRepository, documents *documentService.Service) *Service {
	return &Service{
		calculator:   calculator,
		employeeRepo: employeeRepo,
		documents:    documents,
	}
}

// Calculate validates, resolves and runs one payroll computation.
func (s *Service) Calculate(ctx context.Context, req paie.CalculateRequest) (paie.PayrollResultResponse, error) {
	if err := req.Validate(); err != nil {
		return paie.PayrollResultResponse{}, err
	}

	result := s.calculator.Calculate(req.Resolve())
	return paie.ToResultResponse(result), nil
}

// CalculateForEmployee loads the employee record, builds the payroll
// input from it and computes the payslip for the given period.
func (s *Service) CalculateForEmployee(ctx context.Context, employeeID string, month, year int) (paie.PayrollResultResponse, error) {
	if month < 1 || month > 12 {
		return paie.PayrollResultResponse{}, paie.ErrInvalidPeriod
	}

	input, err := s.buildInput(ctx, employeeID, month, year)
	if err != nil {
		return paie.PayrollResultResponse{}, err
	}

	result := s.calculator.Calculate(input)
	return paie.ToResultResponse(result), nil
}

// CreatePayslipDocument computes the payslip and creates its workflow
// document in CALCULATION_PENDING with the payroll summary denormalized.
func (s *Service) CreatePayslipDocument(ctx context.Context, employeeID string, month, year int) (document.MetadataResponse, error) {
	if month < 1 || month > 12 {
		return document.MetadataResponse{}, paie.ErrInvalidPeriod
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return document.MetadataResponse{}, paie.ErrEmployeeNotFound
		}
		return document.MetadataResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	input, err := s.inputFromEmployee(emp, month, year)
	if err != nil {
		return document.MetadataResponse{}, err
	}
	result := s.calculator.Calculate(input)

	created, err := s.documents.Create(ctx, document.CreateDocumentRequest{
		Type:         string(document.TypePayslip),
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		PeriodMonth:  month,
		PeriodYear:   year,
		GrossSalary:  result.GrossGlobalSalary,
		NetSalary:    result.NetSalary,
		Deductions:   result.GrossGlobalSalary.Sub(result.NetSalary),
		NetIncomeTax: result.NetIncomeTax,
	})
	if err != nil {
		if errors.Is(err, document.ErrDocumentExists) {
			return document.MetadataResponse{}, paie.ErrPayslipAlreadyExists
		}
		return document.MetadataResponse{}, err
	}
	return created, nil
}

func (s *Service) buildInput(ctx context.Context, employeeID string, month, year int) (paie.PayrollInput, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return paie.PayrollInput{}, paie.ErrEmployeeNotFound
		}
		return paie.PayrollInput{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return s.inputFromEmployee(emp, month, year)
}

// inputFromEmployee builds the payroll input from a stored employee
// record. Bad stored data surfaces as its own sentinel rather than the
// field errors reserved for request payloads.
func (s *Service) inputFromEmployee(emp employee.Employee, month, year int) (paie.PayrollInput, error) {
	if emp.BaseSalary == nil || emp.BaseSalary.IsZero() {
		return paie.PayrollInput{}, paie.ErrEmployeeHasNoSalary
	}
	if emp.BaseSalary.IsNegative() || negativeRate(emp.CIMRRate) || negativeRate(emp.InsuranceRate) {
		return paie.PayrollInput{}, paie.ErrNegativeMonetaryField
	}
	if !emp.MaritalStatus.IsValid() {
		return paie.PayrollInput{}, paie.ErrInvalidMaritalStatus
	}

	periodEnd := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)

	req := paie.CalculateRequest{
		EmployeeID:        emp.ID,
		PeriodMonth:       month,
		PeriodYear:        year,
		BaseSalary:        *emp.BaseSalary,
		SeniorityMonths:   emp.SeniorityMonths(periodEnd),
		MaritalStatus:     string(emp.MaritalStatus),
		DependentChildren: emp.DependentChildren,
		CIMRRate:          emp.CIMRRate,
		InsuranceRate:     emp.InsuranceRate,
	}
	if err := req.Validate(); err != nil {
		return paie.PayrollInput{}, err
	}
	return req.Resolve(), nil
}

func negativeRate(rate *decimal.Decimal) bool {
	return rate != nil && rate.IsNegative()
}
