package document

import (
	"context"
	"fmt"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
)

// RuleSeverity decides whether a failed rule aborts the transition or
// only surfaces a warning.
type RuleSeverity string

const (
	RuleSeverityError   RuleSeverity = "ERROR"
	RuleSeverityWarning RuleSeverity = "WARNING"
)

type RuleResult struct {
	Valid    bool
	Message  string
	Severity RuleSeverity
}

// BusinessRule is the pluggable policy interface. The engine carries no
// built-in policy beyond what callers register.
type BusinessRule interface {
	Name() string
	Applies(from, to document.Status, tctx document.TransitionContext) bool
	Validate(ctx context.Context, doc document.Metadata, tctx document.TransitionContext) RuleResult
}

// WorkingHoursRule restricts sensitive transitions (approvals, sending)
// to configured weekday working hours. Disabled by default; enable it via
// configuration when the business confirms the policy.
type WorkingHoursRule struct {
	StartHour int
	EndHour   int
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewWorkingHoursRule(startHour, endHour int) *WorkingHoursRule {
	return &WorkingHoursRule{StartHour: startHour, EndHour: endHour, Now: time.Now}
}

func (r *WorkingHoursRule) Name() string { return "working_hours_only" }

func (r *WorkingHoursRule) Applies(from, to document.Status, tctx document.TransitionContext) bool {
	switch to {
	case document.StatusApprovedForGeneration, document.StatusApproved, document.StatusSent:
		return true
	}
	return false
}

func (r *WorkingHoursRule) Validate(ctx context.Context, doc document.Metadata, tctx document.TransitionContext) RuleResult {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return RuleResult{
			Valid:    false,
			Message:  "sensitive transitions are restricted to weekdays",
			Severity: RuleSeverityError,
		}
	}
	if now.Hour() < r.StartHour || now.Hour() >= r.EndHour {
		return RuleResult{
			Valid:    false,
			Message:  fmt.Sprintf("sensitive transitions are restricted to %02d:00-%02d:00", r.StartHour, r.EndHour),
			Severity: RuleSeverityError,
		}
	}
	return RuleResult{Valid: true}
}
