package document

import (
	"context"
	"errors"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/domain/employee"
	"github.com/google/uuid"
)

// Config bounds the engine's batch fan-out.
type Config struct {
	BatchChunkSize int
	MaxInFlight    int
}

func (c Config) withDefaults() Config {
	if c.BatchChunkSize <= 0 {
		c.BatchChunkSize = 25
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 5
	}
	return c
}

// Service owns every legal status transition for payroll documents. No
// document skips steps, every change is attributable and audited, and
// side effects fire once per committed transition.
type Service struct {
	txm          document.TxManager
	docRepo      document.Repository
	auditRepo    document.AuditRepository
	employeeRepo employee.EmployeeRepository

	conditions *conditionEvaluator
	effects    *effectExecutor
	rules      []BusinessRule
	handlers   []NotificationHandler
	cfg        Config
}

func NewService(
	txm document.TxManager,
	docRepo document.Repository,
	auditRepo document.AuditRepository,
	employeeRepo employee.EmployeeRepository,
	cache PreviewCache,
	queue JobQueue,
	cfg Config,
) *Service {
	return &Service{
		txm:          txm,
		docRepo:      docRepo,
		auditRepo:    auditRepo,
		employeeRepo: employeeRepo,
		conditions:   newConditionEvaluator(employeeRepo),
		effects:      newEffectExecutor(cache, queue),
		cfg:          cfg.withDefaults(),
	}
}

// RegisterRule adds a pluggable business rule. Rules whose Applies
// predicate matches run on every transition attempt; an ERROR result
// aborts, a WARNING is surfaced to the caller.
func (s *Service) RegisterRule(rule BusinessRule) {
	s.rules = append(s.rules, rule)
}

// RegisterNotificationHandler adds a handler for post-transition events.
func (s *Service) RegisterNotificationHandler(handler NotificationHandler) {
	s.handlers = append(s.handlers, handler)
}

// Create inserts a new document in CALCULATION_PENDING with its payroll
// summary denormalized from the already-computed result.
func (s *Service) Create(ctx context.Context, req document.CreateDocumentRequest) (document.MetadataResponse, error) {
	if err := req.Validate(); err != nil {
		return document.MetadataResponse{}, err
	}

	doc := document.Metadata{
		ID:           uuid.NewString(),
		Type:         document.Type(req.Type),
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		PeriodMonth:  req.PeriodMonth,
		PeriodYear:   req.PeriodYear,
		Status:       document.StatusCalculationPending,
		Payroll: document.PayrollSummary{
			GrossSalary:     req.GrossSalary,
			NetSalary:       req.NetSalary,
			TotalDeductions: req.Deductions,
			NetIncomeTax:    req.NetIncomeTax,
			Currency:        "MAD",
		},
	}

	created, err := s.docRepo.Create(ctx, doc)
	if err != nil {
		if errors.Is(err, document.ErrDocumentExists) {
			return document.MetadataResponse{}, err
		}
		return document.MetadataResponse{}, document.NewConnectionFailureError("create_document", err)
	}
	return document.ToMetadataResponse(created), nil
}

// Get returns one document by id.
func (s *Service) Get(ctx context.Context, id string) (document.MetadataResponse, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return document.MetadataResponse{}, document.NewNotFoundError("get_document", id)
		}
		return document.MetadataResponse{}, document.NewConnectionFailureError("get_document", err)
	}
	return document.ToMetadataResponse(doc), nil
}

// Transition moves one document to targetStatus as a single atomic unit:
// read current status under a row lock, validate against the transition
// table, preconditions, approval gate and business rules, run pre
// side effects, persist the status with its merged fields, append one
// audit entry, then commit. Post side effects and notification dispatch
// run after commit and never affect the outcome.
//
// Two concurrent calls on the same document serialize on the row lock;
// the loser revalidates against the winner's committed status.
func (s *Service) Transition(ctx context.Context, documentID string, targetStatus document.Status, tctx document.TransitionContext) (document.TransitionResult, error) {
	const op = "transition"
	start := time.Now()

	if tctx.RequestID == "" {
		tctx.RequestID = uuid.NewString()
	}
	if tctx.Trigger == "" {
		tctx.Trigger = document.TriggerUserAction
	}

	var (
		result      document.TransitionResult
		lockedDoc   document.Metadata
		transition  document.Transition
		preOutcomes []document.EffectOutcome
		warnings    []document.RuleWarning
	)

	err := s.txm.Within(ctx, func(ctx context.Context) error {
		doc, err := s.docRepo.GetForUpdate(ctx, documentID)
		if err != nil {
			if errors.Is(err, document.ErrDocumentNotFound) {
				return document.NewNotFoundError(op, documentID)
			}
			return document.NewConnectionFailureError(op, err)
		}
		lockedDoc = doc

		def, ok := document.FindTransition(doc.Status, targetStatus)
		if !ok {
			return document.NewInvalidTransitionError(op, "transition not in table", doc.Status, targetStatus)
		}
		transition = def

		for _, cond := range def.Conditions {
			holds, err := s.conditions.evaluate(ctx, cond, doc, tctx)
			if err != nil {
				return document.NewConnectionFailureError(op, err)
			}
			if !holds {
				return document.NewInvalidTransitionError(op, string(cond), doc.Status, targetStatus)
			}
		}

		if def.RequiresApproval && !tctx.ApprovalGranted() {
			return document.NewApprovalRequiredError(op, doc.Status, targetStatus)
		}

		for _, rule := range s.rules {
			if !rule.Applies(doc.Status, targetStatus, tctx) {
				continue
			}
			res := rule.Validate(ctx, doc, tctx)
			if res.Valid {
				continue
			}
			if res.Severity == RuleSeverityError {
				return document.NewInvalidTransitionError(op, rule.Name(), doc.Status, targetStatus)
			}
			warnings = append(warnings, document.RuleWarning{Rule: rule.Name(), Message: res.Message})
		}

		preOutcomes = s.effects.run(ctx, def.PreEffects, doc, tctx)

		fields := buildStatusFields(targetStatus, tctx)
		if err := s.docRepo.UpdateStatus(ctx, doc.ID, targetStatus, fields); err != nil {
			return document.NewConnectionFailureError(op, err)
		}

		entry := document.AuditEntry{
			ID:               uuid.NewString(),
			DocumentID:       doc.ID,
			FromStatus:       doc.Status,
			ToStatus:         targetStatus,
			Trigger:          tctx.Trigger,
			ActorID:          tctx.ActorID,
			OccurredAt:       time.Now().UTC(),
			Reason:           tctx.Reason,
			RequestID:        tctx.RequestID,
			ApprovalRequired: def.RequiresApproval,
			Critical:         isCriticalTransition(def, targetStatus),
			AffectedUsers:    []string{doc.EmployeeID},
			ErrorDetails:     tctx.Error,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}
		FinalizeAuditEntry(&entry)

		auditID, err := s.auditRepo.Append(ctx, entry)
		if err != nil {
			return document.NewConnectionFailureError(op, err)
		}

		result = document.TransitionResult{
			DocumentID:     doc.ID,
			PreviousStatus: doc.Status,
			NewStatus:      targetStatus,
			AuditEntryID:   auditID,
		}
		return nil
	})
	if err != nil {
		return document.TransitionResult{}, err
	}

	postOutcomes := s.effects.run(ctx, transition.PostEffects, lockedDoc, tctx)
	result.Warnings = warnings
	result.ExecutedEffects = append(preOutcomes, postOutcomes...)

	// Dispatch runs detached: the outcome is committed, and a slow
	// handler (SMTP retries) must not hold up the caller.
	go s.dispatchNotifications(context.WithoutCancel(ctx), buildNotificationEvent(lockedDoc, result.PreviousStatus, targetStatus, tctx))

	return result, nil
}

// buildStatusFields merges the status-specific columns for the target
// status; everything else stays untouched.
func buildStatusFields(target document.Status, tctx document.TransitionContext) document.StatusFields {
	now := time.Now().UTC()
	var fields document.StatusFields

	switch target {
	case document.StatusApprovedForGeneration, document.StatusApproved:
		actor := tctx.ActorID
		fields.ApprovedBy = &actor
		fields.ApprovedAt = &now
		fields.ApprovalComments = tctx.Reason

	case document.StatusGenerated:
		fields.Storage = tctx.Storage

	case document.StatusGenerationFailed:
		details := tctx.Error
		if details == nil {
			details = &document.ErrorDetails{Type: "unknown", Message: "generation failed without details"}
		}
		fields.GenerationError = details

	case document.StatusSent:
		actor := tctx.ActorID
		tracking := uuid.NewString()
		fields.SentBy = &actor
		fields.SentAt = &now
		fields.Recipients = tctx.RecipientList()
		fields.TrackingID = &tracking

	case document.StatusArchived:
		actor := tctx.ActorID
		fields.ArchivedBy = &actor
		fields.ArchivedAt = &now
	}

	return fields
}

func isCriticalTransition(def document.Transition, target document.Status) bool {
	if def.RequiresApproval {
		return true
	}
	switch target {
	case document.StatusSent, document.StatusArchived, document.StatusGenerationFailed:
		return true
	}
	return false
}
