package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/ingest"
	"github.com/fedscout/fedscout/internal/persistence"
)

// ingestionTimeout bounds one background ingestion pass.
const ingestionTimeout = 5 * time.Minute

// IngestionService triggers feed pulls and exposes job status. A
// trigger returns the queued job immediately; the fetch runs in the
// background detached from the caller's request context.
type IngestionService struct {
	runner *ingest.Service
	logs   persistence.IngestionLogRepo
	log    zerolog.Logger

	// background wraps the detached run. Tests swap it to run inline.
	background func(job *domain.IngestionLog, q ingest.Query)
}

// NewIngestionService wires an ingestion service.
func NewIngestionService(runner *ingest.Service, logs persistence.IngestionLogRepo, log zerolog.Logger) *IngestionService {
	s := &IngestionService{runner: runner, logs: logs, log: log}
	s.background = func(job *domain.IngestionLog, q ingest.Query) {
		go s.run(job, q)
	}
	return s
}

// Trigger enqueues an ingestion job and starts it in the background.
func (s *IngestionService) Trigger(ctx context.Context, q ingest.Query) (*domain.IngestionLog, error) {
	job, err := s.runner.Enqueue(ctx)
	if err != nil {
		return nil, err
	}
	s.background(job, q)
	return job, nil
}

// Status returns one job's log row.
func (s *IngestionService) Status(ctx context.Context, id uuid.UUID) (*domain.IngestionLog, error) {
	return s.logs.Get(ctx, id)
}

// History lists recent jobs, newest first.
func (s *IngestionService) History(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	return s.logs.ListRecent(ctx, limit)
}

func (s *IngestionService) run(job *domain.IngestionLog, q ingest.Query) {
	ctx, cancel := context.WithTimeout(context.Background(), ingestionTimeout)
	defer cancel()

	if err := s.runner.Run(ctx, job, q); err != nil {
		s.log.Error().
			Err(err).
			Str("job_id", job.ID.String()).
			Msg("background ingestion failed")
	}
}
