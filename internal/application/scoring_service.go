// Package application orchestrates the scoring engines over the
// repository layer: load the pair, compute, persist, cache.
package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fedscout/fedscout/internal/cache"
	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
	"github.com/fedscout/fedscout/internal/risk"
	"github.com/fedscout/fedscout/internal/scoring"
	"github.com/fedscout/fedscout/internal/winprob"
)

// BatchLimit caps how many opportunities one batch request may score.
const BatchLimit = 100

// batchWorkers bounds concurrent scoring goroutines in a batch.
const batchWorkers = 8

// ErrBatchTooLarge is returned when a batch exceeds BatchLimit.
var ErrBatchTooLarge = fmt.Errorf("batch exceeds %d opportunities", BatchLimit)

// ScoringService computes and persists relevance, risk, and win
// probability for (organization, opportunity) pairs.
type ScoringService struct {
	orgs     persistence.OrganizationRepo
	opps     persistence.OpportunityRepo
	scores   persistence.ScoreRepo
	cache    cache.ScoreCache
	scorer   *scoring.Scorer
	assessor *risk.Assessor
	model    *winprob.Model
	log      zerolog.Logger
	now      func() time.Time
}

// NewScoringService wires a scoring service. The cache may be nil, in
// which case every request recomputes.
func NewScoringService(
	orgs persistence.OrganizationRepo,
	opps persistence.OpportunityRepo,
	scores persistence.ScoreRepo,
	scoreCache cache.ScoreCache,
	scorer *scoring.Scorer,
	assessor *risk.Assessor,
	model *winprob.Model,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		orgs:     orgs,
		opps:     opps,
		scores:   scores,
		cache:    scoreCache,
		scorer:   scorer,
		assessor: assessor,
		model:    model,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *ScoringService) WithClock(now func() time.Time) *ScoringService {
	s.now = now
	return s
}

// CalculateRelevance scores one pair, persisting and caching the
// result. Cached results are returned as-is without recomputation.
func (s *ScoringService) CalculateRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetRelevance(ctx, orgID, oppID)
		if err != nil {
			s.log.Warn().Err(err).Msg("score cache read failed")
		}
		if ok {
			return cached, nil
		}
	}

	org, opp, err := s.loadPair(ctx, orgID, oppID)
	if err != nil {
		return nil, err
	}

	score := s.buildRelevance(org, opp)

	// A cancelled request must not leave a half-committed score behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.scores.UpsertRelevance(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to persist relevance score: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetRelevance(ctx, score); err != nil {
			s.log.Warn().Err(err).Msg("score cache write failed")
		}
	}
	return score, nil
}

// BatchRelevance scores one organization against up to BatchLimit
// opportunities. The batch is all-or-nothing: every opportunity is
// resolved before any scoring starts, a missing ID fails the whole
// request, and nothing is persisted until every pair has scored.
// Results come back sorted by overall score, best first.
func (s *ScoringService) BatchRelevance(ctx context.Context, orgID uuid.UUID, oppIDs []uuid.UUID) ([]domain.RelevanceScore, error) {
	if len(oppIDs) > BatchLimit {
		return nil, ErrBatchTooLarge
	}

	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	opps := make([]*domain.Opportunity, len(oppIDs))
	var missing []string
	for i, oppID := range oppIDs {
		opp, err := s.opps.Get(ctx, oppID)
		if errors.Is(err, persistence.ErrNotFound) {
			missing = append(missing, oppID.String())
			continue
		}
		if err != nil {
			return nil, err
		}
		opps[i] = opp
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("opportunity ids not found (%s): %w",
			strings.Join(missing, ", "), persistence.ErrValidation)
	}

	results := make([]domain.RelevanceScore, len(opps))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchWorkers)
	for i, opp := range opps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, opp *domain.Opportunity) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = *s.buildRelevance(org, opp)
		}(i, opp)
	}
	wg.Wait()

	// A cancelled request must not commit any of the batch.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		if err := s.scores.UpsertRelevance(ctx, &results[i]); err != nil {
			return nil, fmt.Errorf("failed to persist batch scores: %w", err)
		}
	}
	if s.cache != nil {
		for i := range results {
			if err := s.cache.SetRelevance(ctx, &results[i]); err != nil {
				s.log.Warn().Err(err).Msg("score cache write failed")
				break
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		return results[i].OpportunityID.String() < results[j].OpportunityID.String()
	})
	return results, nil
}

func (s *ScoringService) buildRelevance(org *domain.Organization, opp *domain.Opportunity) *domain.RelevanceScore {
	result := s.scorer.Score(org, opp)
	return &domain.RelevanceScore{
		ID:                   uuid.New(),
		OrganizationID:       org.ID,
		OpportunityID:        opp.ID,
		OverallScore:         result.OverallScore,
		NAICSScore:           result.NAICSScore,
		SemanticScore:        result.SemanticScore,
		GeographicScore:      result.GeographicScore,
		SizeScore:            result.SizeScore,
		PastPerformanceScore: result.PastPerformanceScore,
		ComponentWeights:     result.ComponentWeights,
		Explanation:          result.Explanation,
		CalculatedAt:         s.now().UTC(),
		ModelVersion:         scoring.ModelVersion,
	}
}

// GetRelevance returns a previously persisted score without
// recomputing.
func (s *ScoringService) GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, error) {
	return s.scores.GetRelevance(ctx, orgID, oppID)
}

// AssessRisk runs the six-category assessment for one pair and
// persists the result.
func (s *ScoringService) AssessRisk(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RiskAssessment, error) {
	org, opp, err := s.loadPair(ctx, orgID, oppID)
	if err != nil {
		return nil, err
	}

	result := s.assessor.Assess(org, opp)
	assessment := &domain.RiskAssessment{
		ID:                    uuid.New(),
		OrganizationID:        orgID,
		OpportunityID:         oppID,
		OverallRiskLevel:      result.OverallRiskLevel,
		OverallRiskScore:      result.OverallRiskScore,
		EligibilityRisk:       result.Eligibility,
		TechnicalRisk:         result.Technical,
		PricingRisk:           result.Pricing,
		ResourceRisk:          result.Resource,
		ComplianceRisk:        result.Compliance,
		TimelineRisk:          result.Timeline,
		RiskFactors:           result.RiskFactors,
		MitigationSuggestions: result.MitigationSuggestions,
		AssessedAt:            s.now().UTC(),
		ModelVersion:          risk.ModelVersion,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.scores.UpsertRiskAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to persist risk assessment: %w", err)
	}
	return assessment, nil
}

// PredictWin computes the seven-factor win probability for one pair.
// Predictions are advisory and not persisted.
func (s *ScoringService) PredictWin(ctx context.Context, orgID, oppID uuid.UUID) (*winprob.Result, error) {
	org, opp, err := s.loadPair(ctx, orgID, oppID)
	if err != nil {
		return nil, err
	}
	result := s.model.Predict(org, opp)
	return &result, nil
}

func (s *ScoringService) loadPair(ctx context.Context, orgID, oppID uuid.UUID) (*domain.Organization, *domain.Opportunity, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil, fmt.Errorf("organization %s: %w", orgID, persistence.ErrNotFound)
		}
		return nil, nil, err
	}
	opp, err := s.opps.Get(ctx, oppID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil, fmt.Errorf("opportunity %s: %w", oppID, persistence.ErrNotFound)
		}
		return nil, nil, err
	}
	return org, opp, nil
}
