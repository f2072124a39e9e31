package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Skotchmaster/doc_platform/pkg/events"
	"github.com/Skotchmaster/doc_platform/pkg/ingestion"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/models"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/repo"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

type Store interface {
	Create(ctx context.Context, in *models.Ingestion) error
	Get(ctx context.Context, id uint) (*models.Ingestion, error)
	ExistsForDocument(ctx context.Context, documentID uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status ingestion.Status) error
}

// IngestionService records ingestion requests and processes them in the
// background after a delay.
type IngestionService struct {
	Repo   Store
	Events events.Publisher

	// Delay picks how long processing waits; Outcome turns that delay into
	// the final status.
	Delay   func() time.Duration
	Outcome func(delay time.Duration) ingestion.Status

	wg sync.WaitGroup
}

// RandomDelay draws a whole number of seconds in [min, max].
func RandomDelay(min, max time.Duration) func() time.Duration {
	return func() time.Duration {
		span := int64((max - min) / time.Second)
		if span <= 0 {
			return min
		}
		return min + time.Duration(rand.N(span+1))*time.Second
	}
}

// ParityOutcome succeeds when the delay is an even number of seconds.
func ParityOutcome(delay time.Duration) ingestion.Status {
	if int64(delay/time.Second)%2 == 0 {
		return ingestion.StatusSuccess
	}
	return ingestion.StatusFailed
}

// Add stores a pending ingestion and schedules its processing on bg, which
// outlives the request that created it.
func (s *IngestionService) Add(ctx, bg context.Context, req ingestion.AddRequest) (*models.Ingestion, error) {
	l := logging.FromContext(ctx).With("svc", "ingestion.add")

	if req.UserID == 0 || req.DocumentID == 0 {
		return nil, fmt.Errorf("%w: userId and documentId are required", ErrValidation)
	}
	exists, err := s.Repo.ExistsForDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: document %d", ErrConflict, req.DocumentID)
	}

	in := &models.Ingestion{UserID: req.UserID, DocumentID: req.DocumentID, Status: ingestion.StatusPending}
	if err := s.Repo.Create(ctx, in); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: document %d", ErrConflict, req.DocumentID)
		}
		return nil, err
	}
	l.Info("ingestion_created", "ingestion_id", in.ID, "document_id", in.DocumentID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pctx := logging.IntoContext(bg, logging.FromContext(ctx))
		if err := s.Process(pctx, in.ID); err != nil && !errors.Is(err, context.Canceled) {
			logging.FromContext(pctx).Error("ingestion_process_failed", "ingestion_id", in.ID, "error", err)
		}
	}()
	return in, nil
}

func (s *IngestionService) Get(ctx context.Context, id uint) (*models.Ingestion, error) {
	in, err := s.Repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: ingestion %d", ErrNotFound, id)
	}
	return in, err
}

// Process waits the configured delay, then settles the ingestion status.
func (s *IngestionService) Process(ctx context.Context, id uint) error {
	var delay time.Duration
	if s.Delay != nil {
		delay = s.Delay()
	}
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	outcome := ParityOutcome
	if s.Outcome != nil {
		outcome = s.Outcome
	}
	status := outcome(delay)
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	logging.FromContext(ctx).Info("ingestion_processed", "ingestion_id", id, "status", status, "delay", delay)

	if s.Events != nil {
		in, err := s.Repo.Get(ctx, id)
		if err != nil {
			return err
		}
		ev := events.NewEvent(ingestion.EventProcessed, in.Record())
		if err := s.Events.PublishEvent(ctx, events.TopicIngestions, fmt.Sprint(id), ev); err != nil {
			logging.FromContext(ctx).Warn("event_publish_failed", "type", ingestion.EventProcessed, "error", err)
		}
	}
	return nil
}

// Wait blocks until every scheduled processing run has returned.
func (s *IngestionService) Wait() {
	s.wg.Wait()
}
