package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
)

// AuditRetentionJob flags audit entries whose retention window has
// lapsed. Entries are never deleted; archived rows stay readable for
// compliance exports.
func AuditRetentionJob(auditRepo document.AuditRepository) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		archived, err := auditRepo.MarkArchivedBefore(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if archived > 0 {
			slog.Info("Audit entries archived", "count", archived)
		}
		return nil
	}
}
