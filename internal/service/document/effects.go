package document

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
)

// PreviewCache holds rendered payslip previews keyed by document id.
type PreviewCache interface {
	Put(ctx context.Context, documentID string) error
	Invalidate(ctx context.Context, documentID string) error
}

type JobKind string

const (
	JobKindPreview    JobKind = "preview"
	JobKindGeneration JobKind = "generation"
)

// Job is one unit of background work handed to the rendering workers.
type Job struct {
	Kind       JobKind
	DocumentID string
	RequestID  string
	EnqueuedAt time.Time
}

// JobQueue hands generation/preview work to the rendering workers.
type JobQueue interface {
	Enqueue(ctx context.Context, job Job) error
}

// effectExecutor runs the side effects a transition declares. Effects are
// best effort: failures are logged and reported in the result, never
// propagated into the transition outcome.
type effectExecutor struct {
	cache PreviewCache
	queue JobQueue
}

func newEffectExecutor(cache PreviewCache, queue JobQueue) *effectExecutor {
	return &effectExecutor{cache: cache, queue: queue}
}

func (e *effectExecutor) run(ctx context.Context, effects []document.SideEffect, doc document.Metadata, tctx document.TransitionContext) []document.EffectOutcome {
	if len(effects) == 0 {
		return nil
	}

	outcomes := make([]document.EffectOutcome, 0, len(effects))
	for _, effect := range effects {
		err := e.runOne(ctx, effect, doc, tctx)
		outcome := document.EffectOutcome{Effect: effect, Succeeded: err == nil}
		if err != nil {
			outcome.Error = err.Error()
			slog.Warn("side effect failed",
				"effect", string(effect),
				"document_id", doc.ID,
				"error", err,
			)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (e *effectExecutor) runOne(ctx context.Context, effect document.SideEffect, doc document.Metadata, tctx document.TransitionContext) error {
	switch effect {
	case document.EffectEnqueuePreviewJob:
		return e.queue.Enqueue(ctx, Job{
			Kind:       JobKindPreview,
			DocumentID: doc.ID,
			RequestID:  tctx.RequestID,
			EnqueuedAt: time.Now().UTC(),
		})

	case document.EffectEnqueueGenerationJob:
		return e.queue.Enqueue(ctx, Job{
			Kind:       JobKindGeneration,
			DocumentID: doc.ID,
			RequestID:  tctx.RequestID,
			EnqueuedAt: time.Now().UTC(),
		})

	case document.EffectCachePreview:
		return e.cache.Put(ctx, doc.ID)

	case document.EffectInvalidatePreviewCache:
		return e.cache.Invalidate(ctx, doc.ID)

	case document.EffectLogGenerationError:
		details := tctx.Error
		if details == nil {
			details = &document.ErrorDetails{Type: "unknown", Message: "generation failed without details"}
		}
		slog.Error("document generation failed",
			"document_id", doc.ID,
			"error_type", details.Type,
			"error_message", details.Message,
			"retryable", details.Retryable,
		)
		return nil

	case document.EffectNotifyStakeholders:
		// The notification dispatch after commit covers stakeholders;
		// the effect only records that the fan-out is due.
		slog.Info("stakeholder notification scheduled", "document_id", doc.ID)
		return nil

	case document.EffectLogDistribution:
		slog.Info("document distributed",
			"document_id", doc.ID,
			"recipients", len(tctx.RecipientList()),
			"actor_id", tctx.ActorID,
		)
		return nil

	case document.EffectScheduleRetention:
		slog.Info("document entered retention",
			"document_id", doc.ID,
			"retention_years", auditRetentionYears,
		)
		return nil
	}
	return nil
}

// ── in-memory collaborators ──────────────────────────────────────────────

// InMemoryPreviewCache is the default PreviewCache, suitable for a single
// node. Swap for a shared cache when previews are rendered out of process.
type InMemoryPreviewCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewInMemoryPreviewCache() *InMemoryPreviewCache {
	return &InMemoryPreviewCache{entries: make(map[string]time.Time)}
}

func (c *InMemoryPreviewCache) Put(ctx context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[documentID] = time.Now().UTC()
	return nil
}

func (c *InMemoryPreviewCache) Invalidate(ctx context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, documentID)
	return nil
}

func (c *InMemoryPreviewCache) Contains(documentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[documentID]
	return ok
}

// InMemoryJobQueue buffers jobs in a channel for in-process workers.
type InMemoryJobQueue struct {
	jobs chan Job
}

func NewInMemoryJobQueue(capacity int) *InMemoryJobQueue {
	return &InMemoryJobQueue{jobs: make(chan Job, capacity)}
}

func (q *InMemoryJobQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs exposes the channel for worker consumption.
func (q *InMemoryJobQueue) Jobs() <-chan Job {
	return q.jobs
}
