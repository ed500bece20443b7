package document

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/domain/employee"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── fakes ────────────────────────────────────────────────────────────────

// fakeTxManager serializes units of work the way the database row lock
// does, so concurrent Transition calls exercise the revalidation path.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]document.Metadata
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]document.Metadata)}
}

func (r *fakeDocRepo) Create(ctx context.Context, doc document.Metadata) (document.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.docs {
		if existing.EmployeeID == doc.EmployeeID &&
			existing.PeriodMonth == doc.PeriodMonth &&
			existing.PeriodYear == doc.PeriodYear &&
			existing.Type == doc.Type {
			return document.Metadata{}, document.ErrDocumentExists
		}
	}
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (document.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return document.Metadata{}, document.ErrDocumentNotFound
	}
	return doc, nil
}

func (r *fakeDocRepo) GetForUpdate(ctx context.Context, id string) (document.Metadata, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeDocRepo) UpdateStatus(ctx context.Context, id string, status document.Status, fields document.StatusFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return document.ErrDocumentNotFound
	}
	doc.Status = status
	if fields.ApprovedBy != nil {
		doc.ApprovedBy = fields.ApprovedBy
	}
	if fields.ApprovedAt != nil {
		doc.ApprovedAt = fields.ApprovedAt
	}
	if fields.ApprovalComments != nil {
		doc.ApprovalComments = fields.ApprovalComments
	}
	if fields.SentBy != nil {
		doc.SentBy = fields.SentBy
	}
	if fields.SentAt != nil {
		doc.SentAt = fields.SentAt
	}
	if fields.Recipients != nil {
		doc.Recipients = fields.Recipients
	}
	if fields.TrackingID != nil {
		doc.TrackingID = fields.TrackingID
	}
	if fields.ArchivedBy != nil {
		doc.ArchivedBy = fields.ArchivedBy
	}
	if fields.ArchivedAt != nil {
		doc.ArchivedAt = fields.ArchivedAt
	}
	if fields.Storage != nil {
		doc.Storage = fields.Storage
	}
	if fields.GenerationError != nil {
		doc.GenerationError = fields.GenerationError
	}
	doc.UpdatedAt = time.Now().UTC()
	r.docs[id] = doc
	return nil
}

func (r *fakeDocRepo) List(ctx context.Context, filter document.ListFilter) ([]document.Metadata, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []document.Metadata
	for _, doc := range r.docs {
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && doc.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, doc)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDocRepo) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int, docType document.Type) (document.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.EmployeeID == employeeID && doc.PeriodMonth == month && doc.PeriodYear == year && doc.Type == docType {
			return doc, nil
		}
	}
	return document.Metadata{}, document.ErrDocumentNotFound
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []document.AuditEntry
}

func (r *fakeAuditRepo) Append(ctx context.Context, entry document.AuditEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return entry.ID, nil
}

func (r *fakeAuditRepo) GetByID(ctx context.Context, id string) (document.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return document.AuditEntry{}, document.ErrAuditEntryNotFound
}

func (r *fakeAuditRepo) ListByDocumentID(ctx context.Context, documentID string, page, limit int) ([]document.AuditEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []document.AuditEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].DocumentID == documentID {
			out = append(out, r.entries[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) Statistics(ctx context.Context, from, to time.Time) (document.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := document.Statistics{
		WindowStart:  from,
		WindowEnd:    to,
		ByTrigger:    make(map[document.Trigger]int64),
		ByActor:      make(map[string]int64),
		ByStatusPair: make(map[string]int64),
	}
	var totalProcessing int64
	var errorCount int64
	for _, e := range r.entries {
		if e.OccurredAt.Before(from) || !e.OccurredAt.Before(to) {
			continue
		}
		stats.TotalTransitions++
		stats.ByTrigger[e.Trigger]++
		stats.ByActor[e.ActorID]++
		stats.ByStatusPair[string(e.FromStatus)+"->"+string(e.ToStatus)]++
		totalProcessing += e.ProcessingTimeMs
		if e.ErrorDetails != nil || e.ToStatus == document.StatusGenerationFailed {
			errorCount++
		}
	}
	if stats.TotalTransitions > 0 {
		stats.AvgProcessingMs = float64(totalProcessing) / float64(stats.TotalTransitions)
		stats.ErrorRate = float64(errorCount) / float64(stats.TotalTransitions)
	}
	return stats, nil
}

func (r *fakeAuditRepo) MarkArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.entries {
		if !r.entries[i].Archived && r.entries[i].RetentionUntil.Before(cutoff) {
			r.entries[i].Archived = true
			n++
		}
	}
	return n, nil
}

func (r *fakeAuditRepo) countFor(documentID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.DocumentID == documentID {
			n++
		}
	}
	return n
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

type recordingHandler struct {
	mu     sync.Mutex
	events []NotificationEvent
}

func (h *recordingHandler) Name() string { return "recording" }

func (h *recordingHandler) Handle(ctx context.Context, event NotificationEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) snapshot() []NotificationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]NotificationEvent(nil), h.events...)
}

// ── harness ──────────────────────────────────────────────────────────────

type testEnv struct {
	service   *Service
	docRepo   *fakeDocRepo
	auditRepo *fakeAuditRepo
	queue     *InMemoryJobQueue
	cache     *InMemoryPreviewCache
	seeded    int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	docRepo := newFakeDocRepo()
	auditRepo := &fakeAuditRepo{}
	employeeRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": validEmployee("emp-1"),
	}}
	cache := NewInMemoryPreviewCache()
	queue := NewInMemoryJobQueue(16)

	svc := NewService(&fakeTxManager{}, docRepo, auditRepo, employeeRepo, cache, queue, Config{})
	return &testEnv{
		service:   svc,
		docRepo:   docRepo,
		auditRepo: auditRepo,
		queue:     queue,
		cache:     cache,
	}
}

func validEmployee(id string) employee.Employee {
	salary := decimal.NewFromInt(15000)
	return employee.Employee{
		ID:               id,
		FullName:         "Amina Benali",
		Email:            "amina.benali@example.ma",
		EmploymentStatus: employee.EmploymentStatusActive,
		MaritalStatus:    "single",
		BaseSalary:       &salary,
	}
}

func (e *testEnv) seedDocument(t *testing.T, status document.Status) string {
	t.Helper()
	// every seeded document gets its own period so the one-per-period
	// uniqueness check stays out of the way
	e.seeded++
	doc := document.Metadata{
		ID:           uuid.NewString(),
		Type:         document.TypePayslip,
		EmployeeID:   "emp-1",
		EmployeeName: "Amina Benali",
		PeriodMonth:  (e.seeded-1)%12 + 1,
		PeriodYear:   2024,
		Status:       document.StatusCalculationPending,
		Payroll: document.PayrollSummary{
			GrossSalary:     decimal.NewFromInt(15000),
			NetSalary:       decimal.RequireFromString("11782.19"),
			TotalDeductions: decimal.RequireFromString("3217.81"),
			NetIncomeTax:    decimal.RequireFromString("2610.01"),
			Currency:        "MAD",
		},
	}
	_, err := e.docRepo.Create(context.Background(), doc)
	require.NoError(t, err)
	if status != document.StatusCalculationPending {
		require.NoError(t, e.docRepo.UpdateStatus(context.Background(), doc.ID, status, document.StatusFields{}))
	}
	return doc.ID
}

func approvalContext(actor string) document.TransitionContext {
	return document.TransitionContext{
		ActorID:  actor,
		Metadata: map[string]interface{}{"approvalGranted": true},
	}
}

// ── tests ────────────────────────────────────────────────────────────────

func TestTransition_LegalMoveCommitsAndAudits(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusCalculationPending)

	result, err := env.service.Transition(context.Background(), id, document.StatusPreviewRequested, document.TransitionContext{ActorID: "hr-1"})
	require.NoError(t, err)

	assert.Equal(t, document.StatusCalculationPending, result.PreviousStatus)
	assert.Equal(t, document.StatusPreviewRequested, result.NewStatus)
	assert.NotEmpty(t, result.AuditEntryID)

	doc, err := env.docRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, document.StatusPreviewRequested, doc.Status)

	entries, _, err := env.auditRepo.ListByDocumentID(context.Background(), id, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, document.StatusCalculationPending, entries[0].FromStatus)
	assert.Equal(t, document.StatusPreviewRequested, entries[0].ToStatus)
	assert.Equal(t, "hr-1", entries[0].ActorID)
	assert.True(t, VerifyAuditEntry(entries[0]))

	// the declared pre effect queued a preview render
	select {
	case job := <-env.queue.Jobs():
		assert.Equal(t, JobKindPreview, job.Kind)
		assert.Equal(t, id, job.DocumentID)
	default:
		t.Fatal("expected a preview job in the queue")
	}
}

func TestTransition_IllegalPairRejectedWithoutSideEffects(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusCalculationPending)

	_, err := env.service.Transition(context.Background(), id, document.StatusSent, document.TransitionContext{ActorID: "hr-1"})
	require.Error(t, err)

	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeInvalidStatusTransition, engineErr.Code)

	doc, _ := env.docRepo.GetByID(context.Background(), id)
	assert.Equal(t, document.StatusCalculationPending, doc.Status)
	assert.Zero(t, env.auditRepo.countFor(id))

	select {
	case <-env.queue.Jobs():
		t.Fatal("no job may be enqueued for a rejected transition")
	default:
	}
}

func TestTransition_UnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Transition(context.Background(), "missing", document.StatusPreviewRequested, document.TransitionContext{})
	require.Error(t, err)

	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeDocumentNotFound, engineErr.Code)
}

func TestTransition_ConditionBlocksWhenEmployeeInvalid(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusCalculationPending)

	// swap the document's employee for one the repo does not know
	doc, _ := env.docRepo.GetByID(context.Background(), id)
	doc.EmployeeID = "ghost"
	env.docRepo.docs[id] = doc

	_, err := env.service.Transition(context.Background(), id, document.StatusPreviewRequested, document.TransitionContext{})
	require.Error(t, err)

	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeInvalidStatusTransition, engineErr.Code)
	assert.Equal(t, string(document.ConditionEmployeeDataValid), engineErr.Detail)
}

func TestTransition_ApprovalGate(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusPendingApproval)

	// without an explicit grant the move is rejected
	_, err := env.service.Transition(context.Background(), id, document.StatusApprovedForGeneration, document.TransitionContext{ActorID: "manager-1"})
	require.Error(t, err)
	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeApprovalRequired, engineErr.Code)

	// with the grant it commits and records the approver
	result, err := env.service.Transition(context.Background(), id, document.StatusApprovedForGeneration, approvalContext("manager-1"))
	require.NoError(t, err)
	assert.Equal(t, document.StatusApprovedForGeneration, result.NewStatus)

	doc, _ := env.docRepo.GetByID(context.Background(), id)
	require.NotNil(t, doc.ApprovedBy)
	assert.Equal(t, "manager-1", *doc.ApprovedBy)
	assert.NotNil(t, doc.ApprovedAt)

	entries, _, _ := env.auditRepo.ListByDocumentID(context.Background(), id, 1, 10)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].ApprovalRequired)
	assert.True(t, entries[0].Critical)
}

func TestTransition_SelfApprovalRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusPendingApproval)

	_, err := env.service.Transition(context.Background(), id, document.StatusApprovedForGeneration, approvalContext("emp-1"))
	require.Error(t, err)

	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeInvalidStatusTransition, engineErr.Code)
	assert.Equal(t, string(document.ConditionApproverAuthorized), engineErr.Detail)
}

type stubRule struct {
	name     string
	severity RuleSeverity
}

func (r stubRule) Name() string { return r.name }

func (r stubRule) Applies(from, to document.Status, tctx document.TransitionContext) bool {
	return true
}

func (r stubRule) Validate(ctx context.Context, doc document.Metadata, tctx document.TransitionContext) RuleResult {
	return RuleResult{Valid: false, Message: "blocked by " + r.name, Severity: r.severity}
}

func TestTransition_RuleErrorAborts(t *testing.T) {
	env := newTestEnv(t)
	env.service.RegisterRule(stubRule{name: "freeze_period", severity: RuleSeverityError})
	id := env.seedDocument(t, document.StatusCalculationPending)

	_, err := env.service.Transition(context.Background(), id, document.StatusPreviewRequested, document.TransitionContext{})
	require.Error(t, err)

	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeInvalidStatusTransition, engineErr.Code)
	assert.Equal(t, "freeze_period", engineErr.Detail)

	doc, _ := env.docRepo.GetByID(context.Background(), id)
	assert.Equal(t, document.StatusCalculationPending, doc.Status)
}

func TestTransition_RuleWarningSurfacedButCommits(t *testing.T) {
	env := newTestEnv(t)
	env.service.RegisterRule(stubRule{name: "late_run", severity: RuleSeverityWarning})
	id := env.seedDocument(t, document.StatusCalculationPending)

	result, err := env.service.Transition(context.Background(), id, document.StatusPreviewRequested, document.TransitionContext{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "late_run", result.Warnings[0].Rule)

	doc, _ := env.docRepo.GetByID(context.Background(), id)
	assert.Equal(t, document.StatusPreviewRequested, doc.Status)
}

func TestTransition_NotificationDispatchedAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	handler := &recordingHandler{}
	env.service.RegisterNotificationHandler(handler)
	id := env.seedDocument(t, document.StatusPendingApproval)

	_, err := env.service.Transition(context.Background(), id, document.StatusApprovedForGeneration, approvalContext("manager-1"))
	require.NoError(t, err)

	// dispatch is detached from the transition
	require.Eventually(t, func() bool {
		return len(handler.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	event := handler.snapshot()[0]
	assert.Equal(t, id, event.DocumentID)
	assert.Equal(t, document.StatusPendingApproval, event.FromStatus)
	assert.Equal(t, document.StatusApprovedForGeneration, event.ToStatus)
	assert.Equal(t, document.PriorityMedium, event.Priority)
	assert.Equal(t, "manager-1", event.ActorID)
}

type blockingHandler struct {
	release chan struct{}
	done    chan struct{}
}

func (h *blockingHandler) Name() string { return "blocking" }

func (h *blockingHandler) Handle(ctx context.Context, event NotificationEvent) error {
	<-h.release
	close(h.done)
	return nil
}

func TestTransition_DoesNotWaitForNotificationHandlers(t *testing.T) {
	env := newTestEnv(t)
	handler := &blockingHandler{release: make(chan struct{}), done: make(chan struct{})}
	env.service.RegisterNotificationHandler(handler)
	id := env.seedDocument(t, document.StatusCalculationPending)

	// returns while the handler is still blocked
	result, err := env.service.Transition(context.Background(), id, document.StatusPreviewRequested, document.TransitionContext{ActorID: "hr-1"})
	require.NoError(t, err)
	assert.Equal(t, document.StatusPreviewRequested, result.NewStatus)

	select {
	case <-handler.done:
		t.Fatal("handler finished before being released")
	default:
	}

	close(handler.release)
	select {
	case <-handler.done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran after the transition returned")
	}
}

func TestTransition_GenerationFailureRecordsError(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusGenerating)

	_, err := env.service.Transition(context.Background(), id, document.StatusGenerationFailed, document.TransitionContext{
		Trigger: document.TriggerSystem,
		ActorID: "system",
		Error:   &document.ErrorDetails{Type: "render", Message: "template failed", Retryable: true},
	})
	require.NoError(t, err)

	doc, _ := env.docRepo.GetByID(context.Background(), id)
	require.NotNil(t, doc.GenerationError)
	assert.Equal(t, "render", doc.GenerationError.Type)
	assert.True(t, doc.GenerationError.Retryable)

	entries, _, _ := env.auditRepo.ListByDocumentID(context.Background(), id, 1, 10)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ErrorDetails)
	assert.True(t, entries[0].Critical)

	// manual retry path back to the approval gate is legal
	_, err = env.service.Transition(context.Background(), id, document.StatusApprovedForGeneration, document.TransitionContext{ActorID: "hr-1"})
	require.NoError(t, err)
}

func TestTransition_SentRecordsDistribution(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusApproved)

	result, err := env.service.Transition(context.Background(), id, document.StatusSent, document.TransitionContext{
		ActorID:  "hr-1",
		Metadata: map[string]interface{}{"recipients": []interface{}{"amina.benali@example.ma"}},
	})
	require.NoError(t, err)
	assert.Equal(t, document.StatusSent, result.NewStatus)

	doc, _ := env.docRepo.GetByID(context.Background(), id)
	require.NotNil(t, doc.SentBy)
	assert.Equal(t, "hr-1", *doc.SentBy)
	assert.Equal(t, []string{"amina.benali@example.ma"}, doc.Recipients)
	require.NotNil(t, doc.TrackingID)
	assert.NotEmpty(t, *doc.TrackingID)
}

func TestConcurrentTransitions_ExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusPendingApproval)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.Transition(context.Background(), id, document.StatusApprovedForGeneration, approvalContext("manager-1"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		engineErr, ok := document.AsEngineError(err)
		require.True(t, ok)
		assert.Equal(t, document.CodeInvalidStatusTransition, engineErr.Code)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, env.auditRepo.countFor(id))
}

func TestBatchTransition_PartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ready1 := env.seedDocument(t, document.StatusCalculationPending)
	wrong := env.seedDocument(t, document.StatusApproved)

	result, err := env.service.BatchTransition(context.Background(), document.BatchTransitionRequest{
		DocumentIDs:  []string{ready1, wrong, "missing"},
		TargetStatus: string(document.StatusPreviewRequested),
	}, document.TransitionContext{ActorID: "hr-1"})
	require.NoError(t, err)

	assert.Len(t, result.Successful, 1)
	assert.Len(t, result.Failed, 2)
	assert.Equal(t, 3, len(result.Successful)+len(result.Failed))

	codes := map[string]document.ErrorCode{}
	for _, f := range result.Failed {
		codes[f.DocumentID] = f.Code
	}
	assert.Equal(t, document.CodeInvalidStatusTransition, codes[wrong])
	assert.Equal(t, document.CodeDocumentNotFound, codes["missing"])
}

func TestBatchTransition_EmptyRequestRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.BatchTransition(context.Background(), document.BatchTransitionRequest{
		TargetStatus: string(document.StatusPreviewRequested),
	}, document.TransitionContext{})
	require.Error(t, err)
}

func TestCreate_DuplicatePeriodRejected(t *testing.T) {
	env := newTestEnv(t)

	req := document.CreateDocumentRequest{
		Type:         string(document.TypePayslip),
		EmployeeID:   "emp-1",
		EmployeeName: "Amina Benali",
		PeriodMonth:  6,
		PeriodYear:   2024,
		GrossSalary:  decimal.NewFromInt(15000),
		NetSalary:    decimal.RequireFromString("11782.19"),
		Deductions:   decimal.RequireFromString("3217.81"),
		NetIncomeTax: decimal.RequireFromString("2610.01"),
	}

	first, err := env.service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, string(document.StatusCalculationPending), first.Status)
	assert.Equal(t, "MAD", first.Currency)

	_, err = env.service.Create(context.Background(), req)
	assert.ErrorIs(t, err, document.ErrDocumentExists)
}

func TestStatusHistory_UnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.service.StatusHistory(context.Background(), "missing", 1, 10)
	require.Error(t, err)

	engineErr, ok := document.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, document.CodeDocumentNotFound, engineErr.Code)
}

func TestStatistics_AggregatesTransitionWindow(t *testing.T) {
	env := newTestEnv(t)
	windowStart := time.Now().UTC().Add(-time.Minute)

	first := env.seedDocument(t, document.StatusCalculationPending)
	_, err := env.service.Transition(context.Background(), first, document.StatusPreviewRequested, document.TransitionContext{ActorID: "hr-1"})
	require.NoError(t, err)
	_, err = env.service.Transition(context.Background(), first, document.StatusPreviewGenerated, document.TransitionContext{Trigger: document.TriggerSystem, ActorID: "system"})
	require.NoError(t, err)

	failing := env.seedDocument(t, document.StatusGenerating)
	_, err = env.service.Transition(context.Background(), failing, document.StatusGenerationFailed, document.TransitionContext{
		Trigger: document.TriggerSystem,
		ActorID: "system",
		Error:   &document.ErrorDetails{Type: "render", Message: "template failed", Retryable: true},
	})
	require.NoError(t, err)

	stats, err := env.service.Statistics(context.Background(), windowStart, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalTransitions)
	assert.Equal(t, int64(1), stats.ByTrigger[document.TriggerUserAction])
	assert.Equal(t, int64(2), stats.ByTrigger[document.TriggerSystem])
	assert.Equal(t, int64(1), stats.ByActor["hr-1"])
	assert.Equal(t, int64(2), stats.ByActor["system"])
	assert.Equal(t, int64(1), stats.ByStatusPair["CALCULATION_PENDING->PREVIEW_REQUESTED"])
	assert.Equal(t, int64(1), stats.ByStatusPair["PREVIEW_REQUESTED->PREVIEW_GENERATED"])
	assert.Equal(t, int64(1), stats.ByStatusPair["GENERATING->GENERATION_FAILED"])
	assert.InDelta(t, 1.0/3.0, stats.ErrorRate, 1e-9)
	assert.GreaterOrEqual(t, stats.AvgProcessingMs, 0.0)
}

func TestStatistics_EmptyWindow(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.service.Statistics(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTransitions)
	assert.Zero(t, stats.ErrorRate)
	assert.False(t, stats.WindowStart.IsZero())
	assert.False(t, stats.WindowEnd.IsZero())
}

func TestStatusHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDocument(t, document.StatusCalculationPending)

	_, err := env.service.Transition(context.Background(), id, document.StatusPreviewRequested, document.TransitionContext{ActorID: "hr-1"})
	require.NoError(t, err)
	_, err = env.service.Transition(context.Background(), id, document.StatusPreviewGenerated, document.TransitionContext{Trigger: document.TriggerSystem, ActorID: "system"})
	require.NoError(t, err)

	entries, total, err := env.service.StatusHistory(context.Background(), id, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, string(document.StatusPreviewGenerated), entries[0].ToStatus)
	assert.Equal(t, string(document.StatusPreviewRequested), entries[1].ToStatus)
}
