package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type documentRepository struct {
	db *database.DB
}

func NewDocumentRepository(db *database.DB) document.Repository {
	return &documentRepository{db: db}
}

const documentColumns = `
	id, type, employee_id, employee_name, period_month, period_year, status,
	gross_salary, net_salary, total_deductions, net_income_tax, currency,
	storage_provider, storage_path, storage_checksum,
	approved_by, approved_at, approval_comments,
	sent_by, sent_at, recipients, tracking_id,
	archived_by, archived_at,
	generation_error_type, generation_error_message, generation_error_retryable,
	created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, doc document.Metadata) (document.Metadata, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_documents (
			id, type, employee_id, employee_name, period_month, period_year, status,
			gross_salary, net_salary, total_deductions, net_income_tax, currency
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + documentColumns

	row := q.QueryRow(ctx, query,
		doc.ID, doc.Type, doc.EmployeeID, doc.EmployeeName, doc.PeriodMonth, doc.PeriodYear, doc.Status,
		doc.Payroll.GrossSalary, doc.Payroll.NetSalary, doc.Payroll.TotalDeductions, doc.Payroll.NetIncomeTax, doc.Payroll.Currency,
	)
	created, err := scanDocument(row)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_documents_period") {
			return document.Metadata{}, document.ErrDocumentExists
		}
		return document.Metadata{}, fmt.Errorf("failed to create document: %w", err)
	}
	return created, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (document.Metadata, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate reads the document under FOR UPDATE; it must run inside a
// transaction started by TxManager or the lock is released immediately.
func (r *documentRepository) GetForUpdate(ctx context.Context, id string) (document.Metadata, error) {
	return r.get(ctx, id, true)
}

func (r *documentRepository) get(ctx context.Context, id string, forUpdate bool) (document.Metadata, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + documentColumns + ` FROM payroll_documents WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	doc, err := scanDocument(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return document.Metadata{}, document.ErrDocumentNotFound
		}
		return document.Metadata{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id string, status document.Status, fields document.StatusFields) error {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"status = $2", "updated_at = NOW()"}
	args := []interface{}{id, status}
	argIdx := 3

	addSet := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.ApprovedBy != nil {
		addSet("approved_by", *fields.ApprovedBy)
	}
	if fields.ApprovedAt != nil {
		addSet("approved_at", *fields.ApprovedAt)
	}
	if fields.ApprovalComments != nil {
		addSet("approval_comments", *fields.ApprovalComments)
	}
	if fields.SentBy != nil {
		addSet("sent_by", *fields.SentBy)
	}
	if fields.SentAt != nil {
		addSet("sent_at", *fields.SentAt)
	}
	if fields.Recipients != nil {
		addSet("recipients", fields.Recipients)
	}
	if fields.TrackingID != nil {
		addSet("tracking_id", *fields.TrackingID)
	}
	if fields.ArchivedBy != nil {
		addSet("archived_by", *fields.ArchivedBy)
	}
	if fields.ArchivedAt != nil {
		addSet("archived_at", *fields.ArchivedAt)
	}
	if fields.Storage != nil {
		addSet("storage_provider", fields.Storage.Provider)
		addSet("storage_path", fields.Storage.Path)
		addSet("storage_checksum", fields.Storage.Checksum)
	}
	if fields.GenerationError != nil {
		addSet("generation_error_type", fields.GenerationError.Type)
		addSet("generation_error_message", fields.GenerationError.Message)
		addSet("generation_error_retryable", fields.GenerationError.Retryable)
	}

	query := fmt.Sprintf("UPDATE payroll_documents SET %s WHERE id = $1", strings.Join(setParts, ", "))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) List(ctx context.Context, filter document.ListFilter) ([]document.Metadata, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereParts := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil {
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		whereParts = append(whereParts, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Type != nil {
		whereParts = append(whereParts, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}
	where := strings.Join(whereParts, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM payroll_documents WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM payroll_documents WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		documentColumns, where, argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Metadata
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, total, nil
}

func (r *documentRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int, docType document.Type) (document.Metadata, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + documentColumns + `
		FROM payroll_documents
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3 AND type = $4`

	doc, err := scanDocument(q.QueryRow(ctx, query, employeeID, month, year, docType))
	if err != nil {
		if err == pgx.ErrNoRows {
			return document.Metadata{}, document.ErrDocumentNotFound
		}
		return document.Metadata{}, fmt.Errorf("failed to get document by period: %w", err)
	}
	return doc, nil
}

func scanDocument(row pgx.Row) (document.Metadata, error) {
	var (
		doc                      document.Metadata
		storageProvider          *string
		storagePath              *string
		storageChecksum          *string
		generationErrorType      *string
		generationErrorMessage   *string
		generationErrorRetryable *bool
	)

	err := row.Scan(
		&doc.ID, &doc.Type, &doc.EmployeeID, &doc.EmployeeName, &doc.PeriodMonth, &doc.PeriodYear, &doc.Status,
		&doc.Payroll.GrossSalary, &doc.Payroll.NetSalary, &doc.Payroll.TotalDeductions, &doc.Payroll.NetIncomeTax, &doc.Payroll.Currency,
		&storageProvider, &storagePath, &storageChecksum,
		&doc.ApprovedBy, &doc.ApprovedAt, &doc.ApprovalComments,
		&doc.SentBy, &doc.SentAt, &doc.Recipients, &doc.TrackingID,
		&doc.ArchivedBy, &doc.ArchivedAt,
		&generationErrorType, &generationErrorMessage, &generationErrorRetryable,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return document.Metadata{}, err
	}

	if storageProvider != nil && storagePath != nil {
		doc.Storage = &document.StoragePointer{
			Provider: *storageProvider,
			Path:     *storagePath,
		}
		if storageChecksum != nil {
			doc.Storage.Checksum = *storageChecksum
		}
	}
	if generationErrorType != nil && generationErrorMessage != nil {
		doc.GenerationError = &document.ErrorDetails{
			Type:    *generationErrorType,
			Message: *generationErrorMessage,
		}
		if generationErrorRetryable != nil {
			doc.GenerationError.Retryable = *generationErrorRetryable
		}
	}
	return doc, nil
}
