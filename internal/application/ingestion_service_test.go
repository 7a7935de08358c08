package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/ingest"
	"github.com/fedscout/fedscout/internal/persistence"
)

type memLogRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.IngestionLog
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{rows: make(map[uuid.UUID]*domain.IngestionLog)}
}

func (r *memLogRepo) Create(ctx context.Context, log *domain.IngestionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	snapshot := *log
	r.rows[log.ID] = &snapshot
	return nil
}

func (r *memLogRepo) Update(ctx context.Context, log *domain.IngestionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[log.ID]; !ok {
		return persistence.ErrNotFound
	}
	snapshot := *log
	r.rows[log.ID] = &snapshot
	return nil
}

func (r *memLogRepo) Get(ctx context.Context, id uuid.UUID) (*domain.IngestionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.rows[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return log, nil
}

func (r *memLogRepo) ListRecent(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.IngestionLog, 0, len(r.rows))
	for _, log := range r.rows {
		out = append(out, *log)
	}
	return out, nil
}

type stubFetcher struct {
	notices []ingest.Notice
	err     error
}

func (f *stubFetcher) Source() string { return ingest.SourceSAMGov }

func (f *stubFetcher) Fetch(ctx context.Context, q ingest.Query) ([]ingest.Notice, error) {
	return f.notices, f.err
}

func newIngestionFixture(fetcher ingest.Fetcher) (*IngestionService, *memLogRepo) {
	logs := newMemLogRepo()
	runner := ingest.NewServiceAt(fetcher, newMemOppRepo(), logs, zerolog.Nop(),
		func() time.Time { return testNow })
	svc := NewIngestionService(runner, logs, zerolog.Nop())
	// Run inline so assertions see the finished job.
	svc.background = func(job *domain.IngestionLog, q ingest.Query) {
		svc.run(job, q)
	}
	return svc, logs
}

func TestTrigger_RunsJobToCompletion(t *testing.T) {
	notices := []ingest.Notice{
		{"noticeId": "N-1", "title": "Janitorial Services"},
		{"noticeId": "N-2", "title": "Fleet Maintenance"},
	}
	svc, _ := newIngestionFixture(&stubFetcher{notices: notices})

	job, err := svc.Trigger(context.Background(), ingest.Query{})
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionCompleted, status.Status)
	assert.Equal(t, 2, status.RecordsFetched)
	assert.Equal(t, 2, status.RecordsInserted)
}

func TestTrigger_FetchFailureRecordsFailedJob(t *testing.T) {
	svc, _ := newIngestionFixture(&stubFetcher{err: errors.New("feed unavailable")})

	job, err := svc.Trigger(context.Background(), ingest.Query{})
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionFailed, status.Status)
	require.NotNil(t, status.ErrorMessage)
	assert.Contains(t, *status.ErrorMessage, "feed unavailable")
}

func TestStatusAndHistory(t *testing.T) {
	svc, _ := newIngestionFixture(&stubFetcher{})

	_, err := svc.Status(context.Background(), uuid.New())
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	_, err = svc.Trigger(context.Background(), ingest.Query{})
	require.NoError(t, err)
	_, err = svc.Trigger(context.Background(), ingest.Query{})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
