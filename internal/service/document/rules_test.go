package document

import (
	"context"
	"testing"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/stretchr/testify/assert"
)

func workingHoursRuleAt(t time.Time) *WorkingHoursRule {
	rule := NewWorkingHoursRule(8, 18)
	rule.Now = func() time.Time { return t }
	return rule
}

func TestWorkingHoursRule_AppliesToSensitiveTransitionsOnly(t *testing.T) {
	rule := NewWorkingHoursRule(8, 18)
	tctx := document.TransitionContext{}

	assert.True(t, rule.Applies(document.StatusPendingApproval, document.StatusApprovedForGeneration, tctx))
	assert.True(t, rule.Applies(document.StatusGenerated, document.StatusApproved, tctx))
	assert.True(t, rule.Applies(document.StatusApproved, document.StatusSent, tctx))

	assert.False(t, rule.Applies(document.StatusCalculationPending, document.StatusPreviewRequested, tctx))
	assert.False(t, rule.Applies(document.StatusGenerating, document.StatusGenerated, tctx))
	assert.False(t, rule.Applies(document.StatusSent, document.StatusArchived, tctx))
}

func TestWorkingHoursRule_RejectsWeekends(t *testing.T) {
	// Saturday June 29 2024
	rule := workingHoursRuleAt(time.Date(2024, 6, 29, 10, 0, 0, 0, time.UTC))

	res := rule.Validate(context.Background(), document.Metadata{}, document.TransitionContext{})
	assert.False(t, res.Valid)
	assert.Equal(t, RuleSeverityError, res.Severity)
}

func TestWorkingHoursRule_RejectsOutsideHours(t *testing.T) {
	// Friday June 28 2024
	early := workingHoursRuleAt(time.Date(2024, 6, 28, 7, 59, 0, 0, time.UTC))
	late := workingHoursRuleAt(time.Date(2024, 6, 28, 18, 0, 0, 0, time.UTC))

	assert.False(t, early.Validate(context.Background(), document.Metadata{}, document.TransitionContext{}).Valid)
	assert.False(t, late.Validate(context.Background(), document.Metadata{}, document.TransitionContext{}).Valid)
}

func TestWorkingHoursRule_PassesDuringWeekdayHours(t *testing.T) {
	rule := workingHoursRuleAt(time.Date(2024, 6, 28, 8, 0, 0, 0, time.UTC))

	res := rule.Validate(context.Background(), document.Metadata{}, document.TransitionContext{})
	assert.True(t, res.Valid)
}
