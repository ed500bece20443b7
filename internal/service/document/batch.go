package document

import (
	"context"
	"sync"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"golang.org/x/sync/errgroup"
)

// BatchTransition moves many documents to one target status. Documents
// are processed in fixed-size chunks with a bounded number in flight;
// each document is transitioned independently and partial failure is the
// expected shape of the result, never an abort of the whole batch.
func (s *Service) BatchTransition(ctx context.Context, req document.BatchTransitionRequest, tctx document.TransitionContext) (document.BatchTransitionResult, error) {
	if err := req.Validate(); err != nil {
		return document.BatchTransitionResult{}, err
	}

	target := document.Status(req.TargetStatus)
	result := document.BatchTransitionResult{
		Successful: make([]document.TransitionResult, 0, len(req.DocumentIDs)),
		Failed:     make([]document.BatchFailure, 0),
	}
	var mu sync.Mutex

	for start := 0; start < len(req.DocumentIDs); start += s.cfg.BatchChunkSize {
		end := start + s.cfg.BatchChunkSize
		if end > len(req.DocumentIDs) {
			end = len(req.DocumentIDs)
		}

		g, chunkCtx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.MaxInFlight)

		for _, id := range req.DocumentIDs[start:end] {
			id := id
			g.Go(func() error {
				docCtx := document.TransitionContext{
					ActorID:   tctx.ActorID,
					Trigger:   tctx.Trigger,
					Reason:    req.Reason,
					RequestID: tctx.RequestID,
					Metadata:  req.Metadata,
				}

				res, err := s.Transition(chunkCtx, id, target, docCtx)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failure := document.BatchFailure{DocumentID: id, Message: err.Error()}
					if engineErr, ok := document.AsEngineError(err); ok {
						failure.Code = engineErr.Code
						failure.Message = engineErr.Message
					}
					result.Failed = append(result.Failed, failure)
					return nil
				}
				result.Successful = append(result.Successful, res)
				return nil
			})
		}

		// Workers report failures per document; Wait only surfaces a
		// cancelled context.
		if err := g.Wait(); err != nil {
			return result, err
		}
	}

	return result, nil
}
