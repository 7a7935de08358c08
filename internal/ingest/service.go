package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

// Service runs ingestion jobs: fetch from a feed, parse, upsert, and
// record the outcome in the ingestion log.
type Service struct {
	fetcher Fetcher
	opps    persistence.OpportunityRepo
	logs    persistence.IngestionLogRepo
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates an ingestion service.
func NewService(fetcher Fetcher, opps persistence.OpportunityRepo, logs persistence.IngestionLogRepo, log zerolog.Logger) *Service {
	return &Service{fetcher: fetcher, opps: opps, logs: logs, log: log, now: time.Now}
}

// NewServiceAt is NewService with an injected clock.
func NewServiceAt(fetcher Fetcher, opps persistence.OpportunityRepo, logs persistence.IngestionLogRepo, log zerolog.Logger, now func() time.Time) *Service {
	s := NewService(fetcher, opps, logs, log)
	s.now = now
	return s
}

// Enqueue records a queued job row and returns it. Run picks the job
// up afterwards; splitting the two lets HTTP triggers return a job ID
// immediately while the fetch proceeds in the background.
func (s *Service) Enqueue(ctx context.Context) (*domain.IngestionLog, error) {
	job := &domain.IngestionLog{
		SourceSystem: s.fetcher.Source(),
		Status:       domain.IngestionQueued,
		StartedAt:    s.now().UTC(),
	}
	if err := s.logs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue ingestion job: %w", err)
	}
	return job, nil
}

// Run executes one ingestion pass for a previously enqueued job. A
// fetch failure fails the whole job; a parse or store failure on one
// record is counted and the pass continues.
func (s *Service) Run(ctx context.Context, job *domain.IngestionLog, q Query) error {
	s.log.Info().
		Str("source_system", job.SourceSystem).
		Str("job_id", job.ID.String()).
		Int("limit", q.Limit).
		Msg("starting ingestion")

	job.Status = domain.IngestionRunning
	if err := s.logs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	notices, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("ingestion failed")
		s.finish(ctx, job, domain.IngestionFailed, err)
		return fmt.Errorf("fetch from %s failed: %w", job.SourceSystem, err)
	}
	job.RecordsFetched = len(notices)

	for _, notice := range notices {
		opp, err := ParseNotice(notice, s.now().UTC())
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to parse notice")
			job.RecordsFailed++
			continue
		}
		inserted, err := s.opps.Upsert(ctx, opp)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("notice_id", opp.SourceID).
				Msg("failed to store opportunity")
			job.RecordsFailed++
			continue
		}
		if inserted {
			job.RecordsInserted++
		} else {
			job.RecordsUpdated++
		}
	}

	s.finish(ctx, job, domain.IngestionCompleted, nil)

	s.log.Info().
		Str("job_id", job.ID.String()).
		Int("fetched", job.RecordsFetched).
		Int("inserted", job.RecordsInserted).
		Int("updated", job.RecordsUpdated).
		Int("failed", job.RecordsFailed).
		Msg("ingestion complete")
	return nil
}

func (s *Service) finish(ctx context.Context, job *domain.IngestionLog, status domain.IngestionStatus, cause error) {
	done := s.now().UTC()
	job.Status = status
	job.CompletedAt = &done
	if cause != nil {
		msg := cause.Error()
		job.ErrorMessage = &msg
	}
	if err := s.logs.Update(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to finalize ingestion log")
	}
}
