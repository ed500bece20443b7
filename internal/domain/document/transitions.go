package document

// Condition names a boolean precondition checked against document and
// employee state before a transition is applied.
type Condition string

const (
	ConditionEmployeeDataValid          Condition = "employee_data_valid"
	ConditionPayrollCalculationComplete Condition = "payroll_calculation_complete"
	ConditionPreviewViewed              Condition = "preview_viewed"
	ConditionApproverAuthorized         Condition = "approver_authorized"
	ConditionFileStored                 Condition = "file_stored"
	ConditionDistributionReady          Condition = "distribution_ready"
)

// SideEffect is one of the closed set of effects a transition may declare.
// Effects are best effort: a failing effect is logged and reported, never
// rolled into the transition outcome.
type SideEffect string

const (
	EffectEnqueuePreviewJob      SideEffect = "enqueue_preview_job"
	EffectCachePreview           SideEffect = "cache_preview"
	EffectInvalidatePreviewCache SideEffect = "invalidate_preview_cache"
	EffectEnqueueGenerationJob   SideEffect = "enqueue_generation_job"
	EffectLogGenerationError     SideEffect = "log_generation_error"
	EffectNotifyStakeholders     SideEffect = "notify_stakeholders"
	EffectLogDistribution        SideEffect = "log_distribution"
	EffectScheduleRetention      SideEffect = "schedule_retention"
)

// Transition is one legal (from, to) move with its guard conditions and
// declared side effects.
type Transition struct {
	From             Status
	To               Status
	Conditions       []Condition
	RequiresApproval bool
	PreEffects       []SideEffect
	PostEffects      []SideEffect
}

// Transitions is the single source of truth for legal moves. Any (from,
// to) pair not listed here is rejected; no call site hard-codes its own
// rules.
var Transitions = []Transition{
	{
		From:       StatusCalculationPending,
		To:         StatusPreviewRequested,
		Conditions: []Condition{ConditionEmployeeDataValid, ConditionPayrollCalculationComplete},
		PreEffects: []SideEffect{EffectEnqueuePreviewJob},
	},
	{
		From:        StatusPreviewRequested,
		To:          StatusPreviewGenerated,
		PostEffects: []SideEffect{EffectCachePreview},
	},
	{
		From:       StatusPreviewGenerated,
		To:         StatusPreviewRequested,
		PreEffects: []SideEffect{EffectInvalidatePreviewCache, EffectEnqueuePreviewJob},
	},
	{
		From:       StatusPreviewGenerated,
		To:         StatusPendingApproval,
		Conditions: []Condition{ConditionPreviewViewed},
	},
	{
		From: StatusPendingApproval,
		To:   StatusPreviewGenerated,
	},
	{
		From:             StatusPendingApproval,
		To:               StatusApprovedForGeneration,
		Conditions:       []Condition{ConditionApproverAuthorized},
		RequiresApproval: true,
	},
	{
		From:       StatusApprovedForGeneration,
		To:         StatusGenerating,
		PreEffects: []SideEffect{EffectEnqueueGenerationJob},
	},
	{
		From:        StatusGenerating,
		To:          StatusGenerated,
		Conditions:  []Condition{ConditionFileStored},
		PostEffects: []SideEffect{EffectNotifyStakeholders},
	},
	{
		From:       StatusGenerating,
		To:         StatusGenerationFailed,
		PreEffects: []SideEffect{EffectLogGenerationError},
	},
	{
		From: StatusGenerationFailed,
		To:   StatusApprovedForGeneration,
	},
	{
		From:             StatusGenerated,
		To:               StatusApproved,
		Conditions:       []Condition{ConditionApproverAuthorized},
		RequiresApproval: true,
	},
	{
		From:        StatusApproved,
		To:          StatusSent,
		Conditions:  []Condition{ConditionDistributionReady},
		PostEffects: []SideEffect{EffectLogDistribution},
	},
	{
		From:        StatusSent,
		To:          StatusArchived,
		PostEffects: []SideEffect{EffectScheduleRetention},
	},
}

// FindTransition looks up the definition for (from, to). The second
// return is false when the pair is not a legal move.
func FindTransition(from, to Status) (Transition, bool) {
	for _, t := range Transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}
