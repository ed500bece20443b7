package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
)

// NotificationEvent is the structured event emitted to every registered
// handler after a committed transition.
type NotificationEvent struct {
	DocumentID   string
	EmployeeID   string
	EmployeeName string
	PeriodMonth  int
	PeriodYear   int
	FromStatus   document.Status
	ToStatus     document.Status
	ActorID      string
	OccurredAt   time.Time
	Priority     document.NotificationPriority
	Recipients   []string
	Message      string
	Metadata     map[string]interface{}
}

// NotificationHandler receives transition events. Handlers run isolated
// from each other; one handler's failure never blocks the others.
type NotificationHandler interface {
	Name() string
	Handle(ctx context.Context, event NotificationEvent) error
}

func (s *Service) dispatchNotifications(ctx context.Context, event NotificationEvent) {
	for _, handler := range s.handlers {
		func(h NotificationHandler) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("notification handler panicked",
						"handler", h.Name(),
						"document_id", event.DocumentID,
						"panic", r,
					)
				}
			}()
			if err := h.Handle(ctx, event); err != nil {
				slog.Warn("notification handler failed",
					"handler", h.Name(),
					"document_id", event.DocumentID,
					"error", err,
				)
			}
		}(handler)
	}
}

func buildNotificationEvent(doc document.Metadata, from, to document.Status, tctx document.TransitionContext) NotificationEvent {
	return NotificationEvent{
		DocumentID:   doc.ID,
		EmployeeID:   doc.EmployeeID,
		EmployeeName: doc.EmployeeName,
		PeriodMonth:  doc.PeriodMonth,
		PeriodYear:   doc.PeriodYear,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      tctx.ActorID,
		OccurredAt:   time.Now().UTC(),
		Priority:     document.PriorityFor(to),
		Recipients:   tctx.RecipientList(),
		Message:      fmt.Sprintf("document %s moved from %s to %s", doc.ID, from, to),
		Metadata:     tctx.Metadata,
	}
}
