package document

import (
	"testing"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() document.AuditEntry {
	return document.AuditEntry{
		ID:         "entry-1",
		DocumentID: "doc-1",
		FromStatus: document.StatusPendingApproval,
		ToStatus:   document.StatusApprovedForGeneration,
		Trigger:    document.TriggerUserAction,
		ActorID:    "manager-1",
		OccurredAt: time.Date(2024, 6, 28, 10, 30, 0, 0, time.UTC),
		RequestID:  "req-1",

		ApprovalRequired: true,
		Critical:         true,
	}
}

func TestAuditChecksum_Stable(t *testing.T) {
	entry := sampleEntry()
	assert.Equal(t, AuditChecksum(entry), AuditChecksum(entry))
}

func TestAuditChecksum_DetectsTampering(t *testing.T) {
	entry := sampleEntry()
	original := AuditChecksum(entry)

	tampered := entry
	tampered.ActorID = "someone-else"
	assert.NotEqual(t, original, AuditChecksum(tampered))

	tampered = entry
	tampered.ToStatus = document.StatusSent
	assert.NotEqual(t, original, AuditChecksum(tampered))

	tampered = entry
	reason := "backdated"
	tampered.Reason = &reason
	assert.NotEqual(t, original, AuditChecksum(tampered))
}

func TestAuditChecksum_IgnoresArchivedFlag(t *testing.T) {
	entry := sampleEntry()
	original := AuditChecksum(entry)

	entry.Archived = true
	assert.Equal(t, original, AuditChecksum(entry))
}

func TestVerifyAuditEntry(t *testing.T) {
	entry := sampleEntry()
	FinalizeAuditEntry(&entry)
	require.NotEmpty(t, entry.Checksum)
	assert.True(t, VerifyAuditEntry(entry))

	entry.ActorID = "someone-else"
	assert.False(t, VerifyAuditEntry(entry))
}

func TestVerifyAuditEntry_AfterTimestampRoundTrip(t *testing.T) {
	entry := sampleEntry()
	entry.OccurredAt = time.Date(2024, 6, 28, 10, 30, 0, 123456789, time.UTC)
	FinalizeAuditEntry(&entry)

	// the database column keeps microseconds only
	stored := entry
	stored.OccurredAt = stored.OccurredAt.Truncate(time.Microsecond)
	assert.True(t, VerifyAuditEntry(stored))
}

func TestFinalizeAuditEntry_SetsRetentionHorizon(t *testing.T) {
	entry := sampleEntry()
	FinalizeAuditEntry(&entry)

	want := entry.OccurredAt.AddDate(7, 0, 0)
	assert.True(t, entry.RetentionUntil.Equal(want),
		"retention until %s, want %s", entry.RetentionUntil, want)
}
