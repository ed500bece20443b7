package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTransition_LegalPairs(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusCalculationPending, StatusPreviewRequested},
		{StatusPreviewRequested, StatusPreviewGenerated},
		{StatusPreviewGenerated, StatusPreviewRequested},
		{StatusPreviewGenerated, StatusPendingApproval},
		{StatusPendingApproval, StatusPreviewGenerated},
		{StatusPendingApproval, StatusApprovedForGeneration},
		{StatusApprovedForGeneration, StatusGenerating},
		{StatusGenerating, StatusGenerated},
		{StatusGenerating, StatusGenerationFailed},
		{StatusGenerationFailed, StatusApprovedForGeneration},
		{StatusGenerated, StatusApproved},
		{StatusApproved, StatusSent},
		{StatusSent, StatusArchived},
	}

	for _, c := range cases {
		def, ok := FindTransition(c.from, c.to)
		require.True(t, ok, "%s -> %s should be legal", c.from, c.to)
		assert.Equal(t, c.from, def.From)
		assert.Equal(t, c.to, def.To)
	}
	assert.Len(t, Transitions, len(cases))
}

func TestFindTransition_IllegalPairs(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusCalculationPending, StatusSent},
		{StatusCalculationPending, StatusGenerated},
		{StatusPreviewRequested, StatusPendingApproval},
		{StatusPendingApproval, StatusGenerating},
		{StatusGenerated, StatusSent},
		{StatusArchived, StatusSent},
		{StatusSent, StatusApproved},
		{StatusApproved, StatusApproved},
	}

	for _, c := range cases {
		_, ok := FindTransition(c.from, c.to)
		assert.False(t, ok, "%s -> %s should be rejected", c.from, c.to)
	}
}

func TestApprovalGatedTransitions(t *testing.T) {
	gen, ok := FindTransition(StatusPendingApproval, StatusApprovedForGeneration)
	require.True(t, ok)
	assert.True(t, gen.RequiresApproval)
	assert.Contains(t, gen.Conditions, ConditionApproverAuthorized)

	final, ok := FindTransition(StatusGenerated, StatusApproved)
	require.True(t, ok)
	assert.True(t, final.RequiresApproval)
}

func TestStatusIsValid(t *testing.T) {
	for status := range notificationPriorities {
		assert.True(t, status.IsValid())
	}
	assert.False(t, Status("DRAFT").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityFor(StatusGenerationFailed))
	assert.Equal(t, PriorityHigh, PriorityFor(StatusPendingApproval))
	assert.Equal(t, PriorityHigh, PriorityFor(StatusSent))
	assert.Equal(t, PriorityLow, PriorityFor(Status("DRAFT")))
}

func TestTransitionContextHelpers(t *testing.T) {
	empty := TransitionContext{}
	assert.False(t, empty.ApprovalGranted())
	assert.Nil(t, empty.RecipientList())

	granted := TransitionContext{Metadata: map[string]interface{}{"approvalGranted": true}}
	assert.True(t, granted.ApprovalGranted())

	// JSON decoding hands recipients over as []interface{}
	decoded := TransitionContext{Metadata: map[string]interface{}{
		"recipients": []interface{}{"a@example.ma", "b@example.ma", 42},
	}}
	assert.Equal(t, []string{"a@example.ma", "b@example.ma"}, decoded.RecipientList())
}
