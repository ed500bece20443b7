package document

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum forming the document lifecycle state space.
type Status string

const (
	StatusCalculationPending    Status = "CALCULATION_PENDING"
	StatusPreviewRequested      Status = "PREVIEW_REQUESTED"
	StatusPreviewGenerated      Status = "PREVIEW_GENERATED"
	StatusPendingApproval       Status = "PENDING_APPROVAL"
	StatusApprovedForGeneration Status = "APPROVED_FOR_GENERATION"
	StatusGenerating            Status = "GENERATING"
	StatusGenerated             Status = "GENERATED"
	StatusGenerationFailed      Status = "GENERATION_FAILED"
	StatusApproved              Status = "APPROVED"
	StatusSent                  Status = "SENT"
	StatusArchived              Status = "ARCHIVED"
)

func (s Status) IsValid() bool {
	_, ok := notificationPriorities[s]
	return ok
}

// NotificationPriority of events emitted when a document reaches a status.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityMedium NotificationPriority = "MEDIUM"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// notificationPriorities maps every status to an event priority. Adding a
// status without a row here makes IsValid reject it, which keeps the two
// tables in sync.
var notificationPriorities = map[Status]NotificationPriority{
	StatusCalculationPending:    PriorityLow,
	StatusPreviewRequested:      PriorityLow,
	StatusPreviewGenerated:      PriorityLow,
	StatusPendingApproval:       PriorityHigh,
	StatusApprovedForGeneration: PriorityMedium,
	StatusGenerating:            PriorityLow,
	StatusGenerated:             PriorityMedium,
	StatusGenerationFailed:      PriorityUrgent,
	StatusApproved:              PriorityHigh,
	StatusSent:                  PriorityHigh,
	StatusArchived:              PriorityLow,
}

// PriorityFor returns the notification priority for a status.
func PriorityFor(s Status) NotificationPriority {
	if p, ok := notificationPriorities[s]; ok {
		return p
	}
	return PriorityLow
}

// Trigger enum for what initiated a transition.
type Trigger string

const (
	TriggerUserAction Trigger = "user_action"
	TriggerSystem     Trigger = "system"
	TriggerScheduled  Trigger = "scheduled"
	TriggerError      Trigger = "error"
)

// Type enum
type Type string

const (
	TypePayslip        Type = "payslip"
	TypeSalaryReport   Type = "salary_report"
	TypeCNSSReport     Type = "cnss_report"
	TypeTaxDeclaration Type = "tax_declaration"
)

// PayrollSummary is the payroll result denormalized onto the document at
// creation time. It is a historical snapshot, never re-derived.
type PayrollSummary struct {
	GrossSalary     decimal.Decimal
	NetSalary       decimal.Decimal
	TotalDeductions decimal.Decimal
	NetIncomeTax    decimal.Decimal
	Currency        string
}

// StoragePointer locates the generated file. The engine stores and
// dereferences the pointer; it never inspects file bytes.
type StoragePointer struct {
	Provider string
	Path     string
	Checksum string
}

// Metadata is one payroll document instance. Owned by the workflow
// engine; mutated only through validated transitions.
type Metadata struct {
	ID           string
	Type         Type
	EmployeeID   string
	EmployeeName string
	PeriodMonth  int
	PeriodYear   int
	Status       Status

	Payroll PayrollSummary
	Storage *StoragePointer

	// Approval info, set on APPROVED_FOR_GENERATION / APPROVED
	ApprovedBy       *string
	ApprovedAt       *time.Time
	ApprovalComments *string

	// Distribution info, set on SENT
	SentBy     *string
	SentAt     *time.Time
	Recipients []string
	TrackingID *string

	// Archival info, set on ARCHIVED
	ArchivedBy *string
	ArchivedAt *time.Time

	// Last generation failure, set on GENERATION_FAILED
	GenerationError *ErrorDetails

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrorDetails captures a failure in a form that later retry logic can
// act on.
type ErrorDetails struct {
	Type      string
	Message   string
	Retryable bool
}

// AuditEntry is the immutable record of one status transition. Created
// once, never updated except for the Archived flag after retention
// cleanup, never deleted.
type AuditEntry struct {
	ID         string
	DocumentID string
	FromStatus Status
	ToStatus   Status
	Trigger    Trigger
	ActorID    string
	OccurredAt time.Time
	Reason     *string
	RequestID  string

	ApprovalRequired bool
	Critical         bool
	AffectedUsers    []string

	ErrorDetails     *ErrorDetails
	ProcessingTimeMs int64

	// Checksum over the critical fields, for tamper detection.
	Checksum string
	// RetentionUntil is a fixed compliance horizon from OccurredAt.
	RetentionUntil time.Time
	Archived       bool
}
