package document

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/storage"
	"golang.org/x/sync/errgroup"
)

var payslipTemplate = template.Must(template.New("payslip").Parse(`<!DOCTYPE html>
<html>
  <body>
    <h1>Bulletin de paie</h1>
    <p>{{.EmployeeName}} ({{.EmployeeID}})</p>
    <p>Période: {{printf "%02d" .PeriodMonth}}/{{.PeriodYear}}</p>
    <table>
      <tr><td>Salaire brut global</td><td>{{.Payroll.GrossSalary}} {{.Payroll.Currency}}</td></tr>
      <tr><td>Total des retenues</td><td>{{.Payroll.TotalDeductions}} {{.Payroll.Currency}}</td></tr>
      <tr><td>Impôt sur le revenu</td><td>{{.Payroll.NetIncomeTax}} {{.Payroll.Currency}}</td></tr>
      <tr><td>Salaire net</td><td>{{.Payroll.NetSalary}} {{.Payroll.Currency}}</td></tr>
    </table>
  </body>
</html>
`))

// Worker drains the job queue and advances documents through the
// rendering statuses. Every outcome, including a failed render, goes
// through the regular transition path so it stays audited.
type Worker struct {
	service *Service
	docRepo document.Repository
	files   storage.FileStorage
	queue   *InMemoryJobQueue
	workers int
}

func NewWorker(service *Service, docRepo document.Repository, files storage.FileStorage, queue *InMemoryJobQueue, workers int) *Worker {
	if workers <= 0 {
		workers = 2
	}
	return &Worker{
		service: service,
		docRepo: docRepo,
		files:   files,
		queue:   queue,
		workers: workers,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case job := <-w.queue.Jobs():
					w.process(ctx, job)
				}
			}
		})
	}
	return g.Wait()
}

func (w *Worker) process(ctx context.Context, job Job) {
	var err error
	switch job.Kind {
	case JobKindPreview:
		err = w.processPreview(ctx, job)
	case JobKindGeneration:
		err = w.processGeneration(ctx, job)
	default:
		slog.Warn("unknown job kind", "kind", string(job.Kind), "document_id", job.DocumentID)
		return
	}
	if err != nil {
		slog.Error("job processing failed",
			"kind", string(job.Kind),
			"document_id", job.DocumentID,
			"request_id", job.RequestID,
			"error", err,
		)
	}
}

// processPreview renders the payslip in memory and marks the preview as
// generated. The rendered bytes are not persisted; the preview cache
// only records that a fresh render exists.
func (w *Worker) processPreview(ctx context.Context, job Job) error {
	doc, err := w.docRepo.GetByID(ctx, job.DocumentID)
	if err != nil {
		return err
	}
	if doc.Status != document.StatusPreviewRequested {
		return nil
	}

	if _, err := w.render(doc); err != nil {
		return err
	}

	_, err = w.service.Transition(ctx, doc.ID, document.StatusPreviewGenerated, document.TransitionContext{
		Trigger:   document.TriggerSystem,
		ActorID:   "system",
		RequestID: job.RequestID,
	})
	return err
}

// processGeneration renders and stores the payslip file, then moves the
// document to GENERATED with its storage pointer. A render or upload
// failure moves it to GENERATION_FAILED instead; the retryable flag
// tells operators whether a manual retry is worth attempting.
func (w *Worker) processGeneration(ctx context.Context, job Job) error {
	doc, err := w.docRepo.GetByID(ctx, job.DocumentID)
	if err != nil {
		return err
	}
	if doc.Status != document.StatusGenerating {
		return nil
	}

	pointer, genErr := w.generate(ctx, doc)
	if genErr != nil {
		_, err := w.service.Transition(ctx, doc.ID, document.StatusGenerationFailed, document.TransitionContext{
			Trigger:   document.TriggerSystem,
			ActorID:   "system",
			RequestID: job.RequestID,
			Error: &document.ErrorDetails{
				Type:      "render",
				Message:   genErr.Error(),
				Retryable: true,
			},
		})
		if err != nil {
			return err
		}
		return genErr
	}

	_, err = w.service.Transition(ctx, doc.ID, document.StatusGenerated, document.TransitionContext{
		Trigger:   document.TriggerSystem,
		ActorID:   "system",
		RequestID: job.RequestID,
		Storage:   pointer,
	})
	return err
}

func (w *Worker) generate(ctx context.Context, doc document.Metadata) (*document.StoragePointer, error) {
	rendered, err := w.render(doc)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("payslips/%d/%02d/%s.html", doc.PeriodYear, doc.PeriodMonth, doc.ID)
	stored, err := w.files.Upload(ctx, bytes.NewReader(rendered), path, "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to store payslip: %w", err)
	}

	return &document.StoragePointer{
		Provider: w.files.Provider(),
		Path:     stored.Path,
		Checksum: stored.Checksum,
	}, nil
}

func (w *Worker) render(doc document.Metadata) ([]byte, error) {
	var buf bytes.Buffer
	if err := payslipTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
