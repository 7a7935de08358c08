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
	"github.com/fedscout/fedscout/internal/persistence"
	"github.com/fedscout/fedscout/internal/risk"
	"github.com/fedscout/fedscout/internal/scoring"
	"github.com/fedscout/fedscout/internal/winprob"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type memOrgRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Organization
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{byID: make(map[uuid.UUID]*domain.Organization)}
}

func (r *memOrgRepo) Create(ctx context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	r.byID[org.ID] = org
	return nil
}

func (r *memOrgRepo) Update(ctx context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[org.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.byID[org.ID] = org
	return nil
}

func (r *memOrgRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.byID[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return org, nil
}

func (r *memOrgRepo) List(ctx context.Context, limit, offset int) ([]domain.Organization, error) {
	return nil, nil
}

func (r *memOrgRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type memOppRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Opportunity
}

func newMemOppRepo() *memOppRepo {
	return &memOppRepo{byID: make(map[uuid.UUID]*domain.Opportunity)}
}

func (r *memOppRepo) Upsert(ctx context.Context, opp *domain.Opportunity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opp.ID == uuid.Nil {
		opp.ID = uuid.New()
	}
	_, exists := r.byID[opp.ID]
	r.byID[opp.ID] = opp
	return !exists, nil
}

func (r *memOppRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opp, ok := r.byID[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return opp, nil
}

func (r *memOppRepo) GetBySource(ctx context.Context, sourceSystem, sourceID string) (*domain.Opportunity, error) {
	return nil, persistence.ErrNotFound
}

func (r *memOppRepo) List(ctx context.Context, filter persistence.OpportunityFilter) ([]domain.Opportunity, error) {
	return nil, nil
}

func (r *memOppRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence.ErrNotFound
}

type pairKey struct{ org, opp uuid.UUID }

type memScoreRepo struct {
	mu          sync.Mutex
	relevance   map[pairKey]*domain.RelevanceScore
	assessments map[pairKey]*domain.RiskAssessment
	upserts     int
}

func newMemScoreRepo() *memScoreRepo {
	return &memScoreRepo{
		relevance:   make(map[pairKey]*domain.RelevanceScore),
		assessments: make(map[pairKey]*domain.RiskAssessment),
	}
}

func (r *memScoreRepo) UpsertRelevance(ctx context.Context, score *domain.RelevanceScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.relevance[pairKey{score.OrganizationID, score.OpportunityID}] = score
	return nil
}

func (r *memScoreRepo) GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	score, ok := r.relevance[pairKey{orgID, oppID}]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return score, nil
}

func (r *memScoreRepo) UpsertRiskAssessment(ctx context.Context, a *domain.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assessments[pairKey{a.OrganizationID, a.OpportunityID}] = a
	return nil
}

func (r *memScoreRepo) GetRiskAssessment(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assessments[pairKey{orgID, oppID}]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return a, nil
}

type memScoreCache struct {
	mu      sync.Mutex
	entries map[pairKey]*domain.RelevanceScore
	hits    int
}

func newMemScoreCache() *memScoreCache {
	return &memScoreCache{entries: make(map[pairKey]*domain.RelevanceScore)}
}

func (c *memScoreCache) GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	score, ok := c.entries[pairKey{orgID, oppID}]
	if ok {
		c.hits++
	}
	return score, ok, nil
}

func (c *memScoreCache) SetRelevance(ctx context.Context, score *domain.RelevanceScore) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pairKey{score.OrganizationID, score.OpportunityID}] = score
	return nil
}

func (c *memScoreCache) InvalidateRelevance(ctx context.Context, orgID, oppID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, pairKey{orgID, oppID})
	return nil
}

func strPtr(s string) *string { return &s }

func fixtureOrg() *domain.Organization {
	return &domain.Organization{
		ID:                    uuid.New(),
		Name:                  "Ridgeline Federal Systems",
		UEI:                   strPtr("RIDGE1234567"),
		NAICSCodes:            []string{"541512"},
		SetAsideTypes:         []string{"SB"},
		State:                 strPtr("VA"),
		CapabilitiesNarrative: strPtr("cloud migration services for federal agencies"),
	}
}

func fixtureOpp(title string) *domain.Opportunity {
	deadline := testNow.AddDate(0, 0, 45)
	return &domain.Opportunity{
		ID:                      uuid.New(),
		SourceID:                uuid.NewString(),
		SourceSystem:            "sam.gov",
		Title:                   title,
		Description:             strPtr("cloud migration services and ongoing support"),
		NAICSCode:               strPtr("541512"),
		PlaceOfPerformanceState: strPtr("VA"),
		ResponseDeadline:        &deadline,
		Status:                  domain.StatusActive,
	}
}

type scoringFixture struct {
	svc    *ScoringService
	orgs   *memOrgRepo
	opps   *memOppRepo
	scores *memScoreRepo
	cache  *memScoreCache
}

func newScoringFixture(t *testing.T) *scoringFixture {
	t.Helper()

	scorer, err := scoring.NewScorer(scoring.DefaultWeights())
	require.NoError(t, err)
	model, err := winprob.NewModel(winprob.DefaultWeights())
	require.NoError(t, err)

	f := &scoringFixture{
		orgs:   newMemOrgRepo(),
		opps:   newMemOppRepo(),
		scores: newMemScoreRepo(),
		cache:  newMemScoreCache(),
	}
	f.svc = NewScoringService(
		f.orgs, f.opps, f.scores, f.cache,
		scorer,
		risk.NewAssessorAt(func() time.Time { return testNow }),
		model,
		zerolog.Nop(),
	).WithClock(func() time.Time { return testNow })
	return f
}

func TestCalculateRelevance_PersistsAndCaches(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	opp := fixtureOpp("Cloud Migration Services")
	require.NoError(t, f.orgs.Create(ctx, org))
	_, err := f.opps.Upsert(ctx, opp)
	require.NoError(t, err)

	score, err := f.svc.CalculateRelevance(ctx, org.ID, opp.ID)
	require.NoError(t, err)
	assert.Greater(t, score.OverallScore, 0.5)
	assert.Equal(t, "1.0.0", score.ModelVersion)
	assert.Equal(t, testNow, score.CalculatedAt)
	assert.Equal(t, 1, f.scores.upserts)

	// Second call is served from cache without another persist.
	again, err := f.svc.CalculateRelevance(ctx, org.ID, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, score.OverallScore, again.OverallScore)
	assert.Equal(t, 1, f.scores.upserts)
	assert.Equal(t, 1, f.cache.hits)
}

func TestCalculateRelevance_MissingEntities(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	require.NoError(t, f.orgs.Create(ctx, org))

	_, err := f.svc.CalculateRelevance(ctx, org.ID, uuid.New())
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	_, err = f.svc.CalculateRelevance(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestCalculateRelevance_CancelledContextPersistsNothing(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	opp := fixtureOpp("Cloud Migration Services")
	require.NoError(t, f.orgs.Create(ctx, org))
	_, err := f.opps.Upsert(ctx, opp)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = f.svc.CalculateRelevance(cancelled, org.ID, opp.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, persistence.ErrNotFound))
	assert.Equal(t, 0, f.scores.upserts)
}

func TestBatchRelevance_SortsBestFirstAndPersistsAll(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	require.NoError(t, f.orgs.Create(ctx, org))

	strong := fixtureOpp("Cloud Migration Services")
	weak := fixtureOpp("Grounds Maintenance")
	weak.NAICSCode = strPtr("561730")
	weak.Description = strPtr("mowing and landscaping")
	weak.PlaceOfPerformanceState = strPtr("HI")
	for _, opp := range []*domain.Opportunity{strong, weak} {
		_, err := f.opps.Upsert(ctx, opp)
		require.NoError(t, err)
	}

	results, err := f.svc.BatchRelevance(ctx, org.ID, []uuid.UUID{weak.ID, strong.ID})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, strong.ID, results[0].OpportunityID)
	assert.Equal(t, weak.ID, results[1].OpportunityID)
	assert.GreaterOrEqual(t, results[0].OverallScore, results[1].OverallScore)
	assert.Equal(t, 2, f.scores.upserts)
}

func TestBatchRelevance_MissingIDFailsWholeBatch(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	require.NoError(t, f.orgs.Create(ctx, org))

	opp := fixtureOpp("Cloud Migration Services")
	_, err := f.opps.Upsert(ctx, opp)
	require.NoError(t, err)

	unknown := uuid.New()
	_, err = f.svc.BatchRelevance(ctx, org.ID, []uuid.UUID{opp.ID, unknown})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrValidation)
	assert.Contains(t, err.Error(), unknown.String())

	// Nothing is committed for the valid pair either.
	assert.Equal(t, 0, f.scores.upserts)
	_, err = f.scores.GetRelevance(ctx, org.ID, opp.ID)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestBatchRelevance_CancelledContextPersistsNothing(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	opp := fixtureOpp("Cloud Migration Services")
	require.NoError(t, f.orgs.Create(ctx, org))
	_, err := f.opps.Upsert(ctx, opp)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = f.svc.BatchRelevance(cancelled, org.ID, []uuid.UUID{opp.ID})
	require.Error(t, err)
	assert.Equal(t, 0, f.scores.upserts)
}

func TestBatchRelevance_Limits(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	require.NoError(t, f.orgs.Create(ctx, org))

	tooMany := make([]uuid.UUID, BatchLimit+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	_, err := f.svc.BatchRelevance(ctx, org.ID, tooMany)
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	_, err = f.svc.BatchRelevance(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestAssessRisk_Persists(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	opp := fixtureOpp("Cloud Migration Services")
	require.NoError(t, f.orgs.Create(ctx, org))
	_, err := f.opps.Upsert(ctx, opp)
	require.NoError(t, err)

	assessment, err := f.svc.AssessRisk(ctx, org.ID, opp.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, assessment.OverallRiskLevel)
	assert.Equal(t, testNow, assessment.AssessedAt)

	stored, err := f.scores.GetRiskAssessment(ctx, org.ID, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.OverallRiskScore, stored.OverallRiskScore)
}

func TestPredictWin_ReturnsResultWithoutPersisting(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	org := fixtureOrg()
	opp := fixtureOpp("Cloud Migration Services")
	require.NoError(t, f.orgs.Create(ctx, org))
	_, err := f.opps.Upsert(ctx, opp)
	require.NoError(t, err)

	result, err := f.svc.PredictWin(ctx, org.ID, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, opp.ID.String(), result.OpportunityID)
	assert.NotEmpty(t, result.Recommendation)
	assert.Len(t, result.Factors, 7)
}
