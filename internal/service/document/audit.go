package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
)

// Audit entries are kept for a fixed compliance horizon, then flagged
// archived. They are never deleted.
const auditRetentionYears = 7

// FinalizeAuditEntry computes the integrity checksum and retention date
// for an entry about to be appended. Called explicitly by the engine,
// once, right before Append.
func FinalizeAuditEntry(entry *document.AuditEntry) {
	// timestamptz keeps microseconds; truncate before hashing so the
	// checksum still verifies after a read-back
	entry.OccurredAt = entry.OccurredAt.Truncate(time.Microsecond)
	entry.RetentionUntil = entry.OccurredAt.AddDate(auditRetentionYears, 0, 0)
	entry.Checksum = AuditChecksum(*entry)
}

// AuditChecksum hashes the critical fields of an entry. Recomputing the
// checksum over a stored entry and comparing detects tampering. The
// Archived flag and the checksum itself are excluded so retention
// processing does not invalidate entries.
func AuditChecksum(entry document.AuditEntry) string {
	parts := []string{
		entry.DocumentID,
		string(entry.FromStatus),
		string(entry.ToStatus),
		string(entry.Trigger),
		entry.ActorID,
		entry.OccurredAt.UTC().Format(time.RFC3339Nano),
		entry.RequestID,
		fmt.Sprintf("%t", entry.ApprovalRequired),
	}
	if entry.Reason != nil {
		parts = append(parts, *entry.Reason)
	}
	if entry.ErrorDetails != nil {
		parts = append(parts, entry.ErrorDetails.Type, entry.ErrorDetails.Message)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// VerifyAuditEntry reports whether a stored entry still matches its
// checksum.
func VerifyAuditEntry(entry document.AuditEntry) bool {
	return entry.Checksum == AuditChecksum(entry)
}
