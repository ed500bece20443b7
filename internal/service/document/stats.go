package document

import (
	"context"
	"errors"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
)

// StatusHistory returns a document's audit trail, newest first.
func (s *Service) StatusHistory(ctx context.Context, documentID string, page, limit int) ([]document.AuditEntryResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	// Reject unknown documents rather than returning an empty trail.
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return nil, 0, document.NewNotFoundError("status_history", documentID)
		}
		return nil, 0, document.NewConnectionFailureError("status_history", err)
	}

	entries, total, err := s.auditRepo.ListByDocumentID(ctx, documentID, page, limit)
	if err != nil {
		return nil, 0, document.NewConnectionFailureError("status_history", err)
	}

	out := make([]document.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, document.ToAuditEntryResponse(e))
	}
	return out, total, nil
}

// List returns documents matching the filter, paginated.
func (s *Service) List(ctx context.Context, filter document.ListFilter) ([]document.MetadataResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	docs, total, err := s.docRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, document.NewConnectionFailureError("list_documents", err)
	}

	out := make([]document.MetadataResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, document.ToMetadataResponse(d))
	}
	return out, total, nil
}

// Statistics aggregates transition activity over a time window.
func (s *Service) Statistics(ctx context.Context, from, to time.Time) (document.Statistics, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	stats, err := s.auditRepo.Statistics(ctx, from, to)
	if err != nil {
		return document.Statistics{}, document.NewConnectionFailureError("transition_statistics", err)
	}
	return stats, nil
}
