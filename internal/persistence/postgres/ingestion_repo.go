package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

type ingestionRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewIngestionLogRepo creates a PostgreSQL ingestion log repository.
func NewIngestionLogRepo(db *sqlx.DB, timeout time.Duration) persistence.IngestionLogRepo {
	return &ingestionRepo{db: db, timeout: timeout}
}

func (r *ingestionRepo) Create(ctx context.Context, log *domain.IngestionLog) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if log.SourceSystem == "" {
		return fmt.Errorf("%w: source_system is required", persistence.ErrValidation)
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Status == "" {
		log.Status = domain.IngestionQueued
	}

	query := `
		INSERT INTO ingestion_logs
		(id, source_system, status, started_at, completed_at,
		 records_fetched, records_inserted, records_updated,
		 records_failed, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.SourceSystem, log.Status, log.StartedAt, log.CompletedAt,
		log.RecordsFetched, log.RecordsInserted, log.RecordsUpdated,
		log.RecordsFailed, log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to create ingestion log: %w", err)
	}
	return nil
}

func (r *ingestionRepo) Update(ctx context.Context, log *domain.IngestionLog) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE ingestion_logs SET
			status = $2, completed_at = $3, records_fetched = $4,
			records_inserted = $5, records_updated = $6,
			records_failed = $7, error_message = $8
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		log.ID, log.Status, log.CompletedAt, log.RecordsFetched,
		log.RecordsInserted, log.RecordsUpdated, log.RecordsFailed,
		log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update ingestion log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *ingestionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.IngestionLog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, source_system, status, started_at, completed_at,
		       records_fetched, records_inserted, records_updated,
		       records_failed, error_message
		FROM ingestion_logs
		WHERE id = $1`

	var log domain.IngestionLog
	err := r.db.GetContext(ctx, &log, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion log: %w", err)
	}
	return &log, nil
}

func (r *ingestionRepo) ListRecent(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, source_system, status, started_at, completed_at,
		       records_fetched, records_inserted, records_updated,
		       records_failed, error_message
		FROM ingestion_logs
		ORDER BY started_at DESC
		LIMIT $1`

	var logs []domain.IngestionLog
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list ingestion logs: %w", err)
	}
	return logs, nil
}
