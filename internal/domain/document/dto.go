package document

import (
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// TransitionContext carries who and why for one transition attempt.
type TransitionContext struct {
	ActorID   string
	Trigger   Trigger
	Reason    *string
	RequestID string
	// Metadata is free-form transition context; approval-gated moves
	// look for the "approvalGranted" key.
	Metadata map[string]interface{}
	// Storage is set by the generation worker when moving into GENERATED.
	Storage *StoragePointer
	// Error is set when moving into GENERATION_FAILED.
	Error *ErrorDetails
}

// Recipients extracts the "recipients" metadata key, tolerating the
// []interface{} shape JSON decoding produces.
func (c TransitionContext) RecipientList() []string {
	v, ok := c.Metadata["recipients"]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ApprovalGranted reports whether the context carries an explicit
// approval grant.
func (c TransitionContext) ApprovalGranted() bool {
	v, ok := c.Metadata["approvalGranted"]
	if !ok {
		return false
	}
	granted, ok := v.(bool)
	return ok && granted
}

// TransitionRequest is the API payload for a single transition.
type TransitionRequest struct {
	TargetStatus string                 `json:"target_status"`
	Trigger      string                 `json:"trigger,omitempty"`
	Reason       *string                `json:"reason,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Storage      *StoragePointer        `json:"storage,omitempty"`
	Error        *ErrorDetails          `json:"error,omitempty"`
}

func (r *TransitionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.TargetStatus == "" {
		errs = append(errs, validator.ValidationError{Field: "target_status", Message: "is required"})
	} else if !Status(r.TargetStatus).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "target_status", Message: "is not a known document status"})
	}
	if r.Trigger != "" {
		switch Trigger(r.Trigger) {
		case TriggerUserAction, TriggerSystem, TriggerScheduled, TriggerError:
		default:
			errs = append(errs, validator.ValidationError{Field: "trigger", Message: "must be 'user_action', 'system', 'scheduled' or 'error'"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RuleWarning is a non-blocking business rule outcome surfaced to the
// caller.
type RuleWarning struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// EffectOutcome records one attempted side effect.
type EffectOutcome struct {
	Effect    SideEffect `json:"effect"`
	Succeeded bool       `json:"succeeded"`
	Error     string     `json:"error,omitempty"`
}

// TransitionResult reports a committed transition.
type TransitionResult struct {
	DocumentID      string          `json:"document_id"`
	PreviousStatus  Status          `json:"previous_status"`
	NewStatus       Status          `json:"new_status"`
	AuditEntryID    string          `json:"audit_entry_id"`
	Warnings        []RuleWarning   `json:"warnings,omitempty"`
	ExecutedEffects []EffectOutcome `json:"executed_effects,omitempty"`
}

// BatchTransitionRequest moves many documents to one target status.
type BatchTransitionRequest struct {
	DocumentIDs  []string               `json:"document_ids"`
	TargetStatus string                 `json:"target_status"`
	Trigger      string                 `json:"trigger,omitempty"`
	Reason       *string                `json:"reason,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

func (r *BatchTransitionRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.DocumentIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "document_ids", Message: "must not be empty"})
	}
	single := TransitionRequest{TargetStatus: r.TargetStatus, Trigger: r.Trigger}
	if err := single.Validate(); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, vErrs...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BatchFailure is one per-document failure inside a batch.
type BatchFailure struct {
	DocumentID string    `json:"document_id"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
}

// BatchTransitionResult reports per-document outcomes. Successful plus
// failed always covers every requested document.
type BatchTransitionResult struct {
	Successful []TransitionResult `json:"successful"`
	Failed     []BatchFailure     `json:"failed"`
}

// CreateDocumentRequest creates a document from a computed payroll result.
type CreateDocumentRequest struct {
	Type         string          `json:"type"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	PeriodMonth  int             `json:"period_month"`
	PeriodYear   int             `json:"period_year"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	NetSalary    decimal.Decimal `json:"net_salary"`
	Deductions   decimal.Decimal `json:"total_deductions"`
	NetIncomeTax decimal.Decimal `json:"net_income_tax"`
}

func (r *CreateDocumentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	switch Type(r.Type) {
	case TypePayslip, TypeSalaryReport, TypeCNSSReport, TypeTaxDeclaration:
	default:
		errs = append(errs, validator.ValidationError{Field: "type", Message: "is not a known document type"})
	}
	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.GrossSalary.IsNegative() || r.NetSalary.IsNegative() || r.Deductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "payroll_summary", Message: "monetary fields must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MetadataResponse is the outward document shape.
type MetadataResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	PeriodMonth  int             `json:"period_month"`
	PeriodYear   int             `json:"period_year"`
	Status       string          `json:"status"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	NetSalary    decimal.Decimal `json:"net_salary"`
	Deductions   decimal.Decimal `json:"total_deductions"`
	Currency     string          `json:"currency"`
	ApprovedBy   *string         `json:"approved_by,omitempty"`
	ApprovedAt   *string         `json:"approved_at,omitempty"`
	SentAt       *string         `json:"sent_at,omitempty"`
	ArchivedAt   *string         `json:"archived_at,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func ToMetadataResponse(d Metadata) MetadataResponse {
	fmtTime := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		s := t.Format(time.RFC3339)
		return &s
	}

	return MetadataResponse{
		ID:           d.ID,
		Type:         string(d.Type),
		EmployeeID:   d.EmployeeID,
		EmployeeName: d.EmployeeName,
		PeriodMonth:  d.PeriodMonth,
		PeriodYear:   d.PeriodYear,
		Status:       string(d.Status),
		GrossSalary:  d.Payroll.GrossSalary,
		NetSalary:    d.Payroll.NetSalary,
		Deductions:   d.Payroll.TotalDeductions,
		Currency:     d.Payroll.Currency,
		ApprovedBy:   d.ApprovedBy,
		ApprovedAt:   fmtTime(d.ApprovedAt),
		SentAt:       fmtTime(d.SentAt),
		ArchivedAt:   fmtTime(d.ArchivedAt),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
}

// AuditEntryResponse is the outward audit entry shape.
type AuditEntryResponse struct {
	ID               string        `json:"id"`
	DocumentID       string        `json:"document_id"`
	FromStatus       string        `json:"from_status"`
	ToStatus         string        `json:"to_status"`
	Trigger          string        `json:"trigger"`
	ActorID          string        `json:"actor_id"`
	OccurredAt       string        `json:"occurred_at"`
	Reason           *string       `json:"reason,omitempty"`
	RequestID        string        `json:"request_id,omitempty"`
	ApprovalRequired bool          `json:"approval_required"`
	Critical         bool          `json:"critical"`
	ErrorDetails     *ErrorDetails `json:"error_details,omitempty"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Checksum         string        `json:"checksum"`
	Archived         bool          `json:"archived"`
}

func ToAuditEntryResponse(e AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:               e.ID,
		DocumentID:       e.DocumentID,
		FromStatus:       string(e.FromStatus),
		ToStatus:         string(e.ToStatus),
		Trigger:          string(e.Trigger),
		ActorID:          e.ActorID,
		OccurredAt:       e.OccurredAt.Format(time.RFC3339),
		Reason:           e.Reason,
		RequestID:        e.RequestID,
		ApprovalRequired: e.ApprovalRequired,
		Critical:         e.Critical,
		ErrorDetails:     e.ErrorDetails,
		ProcessingTimeMs: e.ProcessingTimeMs,
		Checksum:         e.Checksum,
		Archived:         e.Archived,
	}
}
