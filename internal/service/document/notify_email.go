package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpmaroc/paie-backend-go/internal/domain/employee"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/email"
)

// EmailNotificationHandler forwards transition events as emails. When
// the transition context names no recipients it falls back to the
// employee's own address.
type EmailNotificationHandler struct {
	emails       email.EmailService
	employeeRepo employee.EmployeeRepository
}

func NewEmailNotificationHandler(emails email.EmailService, employeeRepo employee.EmployeeRepository) *EmailNotificationHandler {
	return &EmailNotificationHandler{emails: emails, employeeRepo: employeeRepo}
}

func (h *EmailNotificationHandler) Name() string {
	return "email"
}

func (h *EmailNotificationHandler) Handle(ctx context.Context, event NotificationEvent) error {
	recipients := event.Recipients
	if len(recipients) == 0 {
		emp, err := h.employeeRepo.GetByID(ctx, event.EmployeeID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil
			}
			return fmt.Errorf("failed to resolve recipient: %w", err)
		}
		if emp.Email == "" {
			return nil
		}
		recipients = []string{emp.Email}
	}

	return h.emails.SendDocumentStatusChange(recipients, email.DocumentStatusChangeData{
		EmployeeName: event.EmployeeName,
		DocumentID:   event.DocumentID,
		PeriodLabel:  fmt.Sprintf("%02d/%d", event.PeriodMonth, event.PeriodYear),
		FromStatus:   string(event.FromStatus),
		ToStatus:     string(event.ToStatus),
		Priority:     string(event.Priority),
		OccurredAt:   event.OccurredAt.Format("2006-01-02 15:04"),
	})
}
