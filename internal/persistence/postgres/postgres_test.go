package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestOpportunityUpsert_ReportsInsertedVsUpdated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOpportunityRepo(db, time.Second)

	now := time.Now()
	opp := &domain.Opportunity{
		SourceID:     "SAM-123",
		SourceSystem: "sam.gov",
		Title:        "Cloud Migration Services",
		Status:       domain.StatusActive,
	}

	cols := []string{"id", "created_at", "updated_at", "ingested_at", "inserted"}
	mock.ExpectQuery(`INSERT INTO opportunities`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(uuid.New(), now, now, now, true))

	inserted, err := repo.Upsert(context.Background(), opp)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEqual(t, uuid.Nil, opp.ID)

	mock.ExpectQuery(`INSERT INTO opportunities`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(opp.ID, now, now, now, false))

	inserted, err = repo.Upsert(context.Background(), opp)
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpportunityUpsert_ValidatesNaturalKey(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewOpportunityRepo(db, time.Second)

	_, err := repo.Upsert(context.Background(), &domain.Opportunity{Title: "x"})
	assert.ErrorIs(t, err, persistence.ErrValidation)

	_, err = repo.Upsert(context.Background(), &domain.Opportunity{
		SourceID: "1", SourceSystem: "sam.gov",
	})
	assert.ErrorIs(t, err, persistence.ErrValidation)

	_, err = repo.Upsert(context.Background(), &domain.Opportunity{
		SourceID: "1", SourceSystem: "sam.gov", Title: "x",
		Status: domain.OpportunityStatus("bogus"),
	})
	assert.ErrorIs(t, err, persistence.ErrValidation)
}

func TestOpportunityGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOpportunityRepo(db, time.Second)

	mock.ExpectQuery(`SELECT .+ FROM opportunities WHERE id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestOrganizationDelete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepo(db, time.Second)

	mock.ExpectExec(`DELETE FROM organizations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestRelevanceUpsert_RoundTripsWeights(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepo(db, time.Second)

	score := &domain.RelevanceScore{
		OrganizationID: uuid.New(),
		OpportunityID:  uuid.New(),
		OverallScore:   0.8123,
		ComponentWeights: map[string]float64{
			"naics": 0.25, "semantic": 0.30, "geographic": 0.15,
			"size": 0.15, "past_performance": 0.15,
		},
		CalculatedAt: time.Now().UTC(),
		ModelVersion: "1.0.0",
	}

	mock.ExpectQuery(`INSERT INTO relevance_scores`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	err := repo.UpsertRelevance(context.Background(), score)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, score.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelevanceUpsert_RequiresPairKey(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewScoreRepo(db, time.Second)

	err := repo.UpsertRelevance(context.Background(), &domain.RelevanceScore{})
	assert.ErrorIs(t, err, persistence.ErrValidation)
}

func TestGetRiskAssessment_DecodesCategories(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepo(db, time.Second)

	orgID, oppID := uuid.New(), uuid.New()
	categories := `{
		"eligibility": {"level": "critical", "score": 0.8, "factors": ["Required set-aside: 8A"]},
		"technical": {"level": "low", "score": 0.0, "factors": []},
		"pricing": {"level": "low", "score": 0.0, "factors": []},
		"resource": {"level": "low", "score": 0.0, "factors": []},
		"compliance": {"level": "low", "score": 0.15, "factors": []},
		"timeline": {"level": "low", "score": 0.2, "factors": []}
	}`

	cols := []string{
		"id", "organization_id", "opportunity_id", "overall_risk_level",
		"overall_risk_score", "categories", "risk_factors",
		"mitigation_suggestions", "assessed_at", "model_version",
	}
	mock.ExpectQuery(`SELECT .+ FROM risk_assessments`).
		WithArgs(orgID, oppID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			uuid.New(), orgID, oppID, "medium", 0.3075, []byte(categories),
			"{}", "{}", time.Now(), "1.0.0"))

	a, err := repo.GetRiskAssessment(context.Background(), orgID, oppID)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskCritical, a.EligibilityRisk.Level)
	assert.Equal(t, 0.8, a.EligibilityRisk.Score)
	assert.Equal(t, 0.2, a.TimelineRisk.Score)
}

func TestIngestionLogLifecycle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIngestionLogRepo(db, time.Second)

	log := &domain.IngestionLog{
		SourceSystem: "sam.gov",
		StartedAt:    time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO ingestion_logs`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), log))
	assert.Equal(t, domain.IngestionQueued, log.Status)
	assert.NotEqual(t, uuid.Nil, log.ID)

	log.Status = domain.IngestionCompleted
	log.RecordsFetched = 3
	log.RecordsInserted = 2
	log.RecordsUpdated = 1
	mock.ExpectExec(`UPDATE ingestion_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), log))

	mock.ExpectExec(`UPDATE ingestion_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), log), persistence.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
