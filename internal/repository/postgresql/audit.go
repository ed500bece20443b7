package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// auditRepository appends and reads immutable status change entries. The
// table carries a delete-prevention trigger; the only mutation exposed is
// the archival flag flip after retention.
type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) document.AuditRepository {
	return &auditRepository{db: db}
}

const auditColumns = `
	id, document_id, from_status, to_status, trigger_kind, actor_id, occurred_at,
	reason, request_id, approval_required, critical, affected_users,
	error_type, error_message, error_retryable, processing_time_ms,
	checksum, retention_until, archived`

func (r *auditRepository) Append(ctx context.Context, entry document.AuditEntry) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO document_status_audit (
			id, document_id, from_status, to_status, trigger_kind, actor_id, occurred_at,
			reason, request_id, approval_required, critical, affected_users,
			error_type, error_message, error_retryable, processing_time_ms,
			checksum, retention_until
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`

	var errorType, errorMessage *string
	var errorRetryable *bool
	if entry.ErrorDetails != nil {
		errorType = &entry.ErrorDetails.Type
		errorMessage = &entry.ErrorDetails.Message
		errorRetryable = &entry.ErrorDetails.Retryable
	}

	var id string
	err := q.QueryRow(ctx, query,
		entry.ID, entry.DocumentID, entry.FromStatus, entry.ToStatus, entry.Trigger, entry.ActorID, entry.OccurredAt,
		entry.Reason, entry.RequestID, entry.ApprovalRequired, entry.Critical, entry.AffectedUsers,
		errorType, errorMessage, errorRetryable, entry.ProcessingTimeMs,
		entry.Checksum, entry.RetentionUntil,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to append audit entry: %w", err)
	}
	return id, nil
}

func (r *auditRepository) GetByID(ctx context.Context, id string) (document.AuditEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + auditColumns + ` FROM document_status_audit WHERE id = $1`

	entry, err := scanAuditEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return document.AuditEntry{}, document.ErrAuditEntryNotFound
		}
		return document.AuditEntry{}, fmt.Errorf("failed to get audit entry: %w", err)
	}
	return entry, nil
}

func (r *auditRepository) ListByDocumentID(ctx context.Context, documentID string, page, limit int) ([]document.AuditEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	countQuery := `SELECT COUNT(*) FROM document_status_audit WHERE document_id = $1`
	if err := q.QueryRow(ctx, countQuery, documentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := `SELECT ` + auditColumns + `
		FROM document_status_audit
		WHERE document_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := q.Query(ctx, query, documentID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []document.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (r *auditRepository) Statistics(ctx context.Context, from, to time.Time) (document.Statistics, error) {
	q := GetQuerier(ctx, r.db)

	stats := document.Statistics{
		WindowStart:  from,
		WindowEnd:    to,
		ByTrigger:    make(map[document.Trigger]int64),
		ByActor:      make(map[string]int64),
		ByStatusPair: make(map[string]int64),
	}

	var avgProcessing *float64
	var errorCount int64
	summaryQuery := `
		SELECT COUNT(*),
		       AVG(processing_time_ms),
		       COUNT(*) FILTER (WHERE error_type IS NOT NULL OR to_status = 'GENERATION_FAILED')
		FROM document_status_audit
		WHERE occurred_at >= $1 AND occurred_at < $2
	`
	if err := q.QueryRow(ctx, summaryQuery, from, to).Scan(&stats.TotalTransitions, &avgProcessing, &errorCount); err != nil {
		return document.Statistics{}, fmt.Errorf("failed to aggregate audit statistics: %w", err)
	}
	if avgProcessing != nil {
		stats.AvgProcessingMs = *avgProcessing
	}
	if stats.TotalTransitions > 0 {
		stats.ErrorRate = float64(errorCount) / float64(stats.TotalTransitions)
	}

	groupQuery := `
		SELECT trigger_kind, actor_id, from_status || '->' || to_status AS pair, COUNT(*)
		FROM document_status_audit
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY trigger_kind, actor_id, pair
	`
	rows, err := q.Query(ctx, groupQuery, from, to)
	if err != nil {
		return document.Statistics{}, fmt.Errorf("failed to group audit statistics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trigger document.Trigger
		var actor, pair string
		var count int64
		if err := rows.Scan(&trigger, &actor, &pair, &count); err != nil {
			return document.Statistics{}, fmt.Errorf("failed to scan audit statistics: %w", err)
		}
		stats.ByTrigger[trigger] += count
		stats.ByActor[actor] += count
		stats.ByStatusPair[pair] += count
	}
	return stats, nil
}

func (r *auditRepository) MarkArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE document_status_audit
		SET archived = TRUE
		WHERE retention_until < $1 AND archived = FALSE
	`
	tag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark archived audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAuditEntry(row pgx.Row) (document.AuditEntry, error) {
	var (
		entry          document.AuditEntry
		errorType      *string
		errorMessage   *string
		errorRetryable *bool
	)

	err := row.Scan(
		&entry.ID, &entry.DocumentID, &entry.FromStatus, &entry.ToStatus, &entry.Trigger, &entry.ActorID, &entry.OccurredAt,
		&entry.Reason, &entry.RequestID, &entry.ApprovalRequired, &entry.Critical, &entry.AffectedUsers,
		&errorType, &errorMessage, &errorRetryable, &entry.ProcessingTimeMs,
		&entry.Checksum, &entry.RetentionUntil, &entry.Archived,
	)
	if err != nil {
		return document.AuditEntry{}, err
	}

	if errorType != nil && errorMessage != nil {
		entry.ErrorDetails = &document.ErrorDetails{
			Type:    *errorType,
			Message: *errorMessage,
		}
		if errorRetryable != nil {
			entry.ErrorDetails.Retryable = *errorRetryable
		}
	}
	return entry, nil
}
