package document

import (
	"context"
	"time"
)

// StatusFields carries the status-specific columns merged onto the
// document record alongside a status change. Nil fields are left alone.
type StatusFields struct {
	ApprovedBy       *string
	ApprovedAt       *time.Time
	ApprovalComments *string

	SentBy     *string
	SentAt     *time.Time
	Recipients []string
	TrackingID *string

	ArchivedBy *string
	ArchivedAt *time.Time

	Storage         *StoragePointer
	GenerationError *ErrorDetails
}

// ListFilter for paginated document listings.
type ListFilter struct {
	Status     *Status
	EmployeeID *string
	Type       *Type
	Page       int
	Limit      int
}

// Statistics aggregates transitions over a time window.
type Statistics struct {
	WindowStart      time.Time
	WindowEnd        time.Time
	TotalTransitions int64
	ByTrigger        map[Trigger]int64
	ByActor          map[string]int64
	ByStatusPair     map[string]int64
	AvgProcessingMs  float64
	ErrorRate        float64
}

// Repository is the persistence collaborator for document metadata.
// GetForUpdate and UpdateStatus must run inside the same unit of work so
// concurrent transitions on one document serialize; TxManager provides
// that unit.
type Repository interface {
	Create(ctx context.Context, doc Metadata) (Metadata, error)
	GetByID(ctx context.Context, id string) (Metadata, error)
	// GetForUpdate reads the document with a row lock held until the
	// surrounding unit of work commits.
	GetForUpdate(ctx context.Context, id string) (Metadata, error)
	UpdateStatus(ctx context.Context, id string, status Status, fields StatusFields) error
	List(ctx context.Context, filter ListFilter) ([]Metadata, int64, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int, docType Type) (Metadata, error)
}

// AuditRepository is the append-only persistence collaborator for the
// audit trail. Entries are never updated except by MarkArchivedBefore and
// never deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) (string, error)
	GetByID(ctx context.Context, id string) (AuditEntry, error)
	// ListByDocumentID returns entries newest-first.
	ListByDocumentID(ctx context.Context, documentID string, page, limit int) ([]AuditEntry, int64, error)
	Statistics(ctx context.Context, from, to time.Time) (Statistics, error)
	// MarkArchivedBefore flags entries past their retention date and
	// returns how many were flagged.
	MarkArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TxManager runs fn inside one atomic unit of work. Repository calls made
// with the ctx passed to fn participate in that unit.
type TxManager interface {
	Within(ctx context.Context, fn func(ctx context.Context) error) error
}
