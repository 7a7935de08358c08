package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

type scoreRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewScoreRepo creates a PostgreSQL score repository.
func NewScoreRepo(db *sqlx.DB, timeout time.Duration) persistence.ScoreRepo {
	return &scoreRepo{db: db, timeout: timeout}
}

func (r *scoreRepo) UpsertRelevance(ctx context.Context, score *domain.RelevanceScore) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if score.OrganizationID == uuid.Nil || score.OpportunityID == uuid.Nil {
		return fmt.Errorf("%w: organization_id and opportunity_id are required", persistence.ErrValidation)
	}
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}

	weights, err := json.Marshal(score.ComponentWeights)
	if err != nil {
		return fmt.Errorf("failed to encode component_weights: %w", err)
	}

	query := `
		INSERT INTO relevance_scores
		(id, organization_id, opportunity_id, overall_score, naics_score,
		 semantic_score, geographic_score, size_score, past_performance_score,
		 component_weights, explanation, calculated_at, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (organization_id, opportunity_id) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			naics_score = EXCLUDED.naics_score,
			semantic_score = EXCLUDED.semantic_score,
			geographic_score = EXCLUDED.geographic_score,
			size_score = EXCLUDED.size_score,
			past_performance_score = EXCLUDED.past_performance_score,
			component_weights = EXCLUDED.component_weights,
			explanation = EXCLUDED.explanation,
			calculated_at = EXCLUDED.calculated_at,
			model_version = EXCLUDED.model_version
		RETURNING id`

	err = r.db.QueryRowxContext(ctx, query,
		score.ID, score.OrganizationID, score.OpportunityID,
		score.OverallScore, score.NAICSScore, score.SemanticScore,
		score.GeographicScore, score.SizeScore, score.PastPerformanceScore,
		weights, score.Explanation, score.CalculatedAt, score.ModelVersion).
		Scan(&score.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert relevance score: %w", err)
	}
	return nil
}

func (r *scoreRepo) GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, organization_id, opportunity_id, overall_score,
		       naics_score, semantic_score, geographic_score, size_score,
		       past_performance_score, component_weights, explanation,
		       calculated_at, model_version
		FROM relevance_scores
		WHERE organization_id = $1 AND opportunity_id = $2`

	var score domain.RelevanceScore
	var weights []byte
	err := r.db.QueryRowxContext(ctx, query, orgID, oppID).Scan(
		&score.ID, &score.OrganizationID, &score.OpportunityID,
		&score.OverallScore, &score.NAICSScore, &score.SemanticScore,
		&score.GeographicScore, &score.SizeScore, &score.PastPerformanceScore,
		&weights, &score.Explanation, &score.CalculatedAt, &score.ModelVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relevance score: %w", err)
	}
	if len(weights) > 0 {
		if err := json.Unmarshal(weights, &score.ComponentWeights); err != nil {
			return nil, fmt.Errorf("failed to decode component_weights: %w", err)
		}
	}
	return &score, nil
}

func (r *scoreRepo) UpsertRiskAssessment(ctx context.Context, a *domain.RiskAssessment) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if a.OrganizationID == uuid.Nil || a.OpportunityID == uuid.Nil {
		return fmt.Errorf("%w: organization_id and opportunity_id are required", persistence.ErrValidation)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	categories, err := json.Marshal(map[string]domain.RiskCategory{
		"eligibility": a.EligibilityRisk,
		"technical":   a.TechnicalRisk,
		"pricing":     a.PricingRisk,
		"resource":    a.ResourceRisk,
		"compliance":  a.ComplianceRisk,
		"timeline":    a.TimelineRisk,
	})
	if err != nil {
		return fmt.Errorf("failed to encode risk categories: %w", err)
	}

	query := `
		INSERT INTO risk_assessments
		(id, organization_id, opportunity_id, overall_risk_level,
		 overall_risk_score, categories, risk_factors,
		 mitigation_suggestions, assessed_at, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (organization_id, opportunity_id) DO UPDATE SET
			overall_risk_level = EXCLUDED.overall_risk_level,
			overall_risk_score = EXCLUDED.overall_risk_score,
			categories = EXCLUDED.categories,
			risk_factors = EXCLUDED.risk_factors,
			mitigation_suggestions = EXCLUDED.mitigation_suggestions,
			assessed_at = EXCLUDED.assessed_at,
			model_version = EXCLUDED.model_version
		RETURNING id`

	err = r.db.QueryRowxContext(ctx, query,
		a.ID, a.OrganizationID, a.OpportunityID, a.OverallRiskLevel,
		a.OverallRiskScore, categories, pq.Array(a.RiskFactors),
		pq.Array(a.MitigationSuggestions), a.AssessedAt, a.ModelVersion).
		Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert risk assessment: %w", err)
	}
	return nil
}

func (r *scoreRepo) GetRiskAssessment(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, organization_id, opportunity_id, overall_risk_level,
		       overall_risk_score, categories, risk_factors,
		       mitigation_suggestions, assessed_at, model_version
		FROM risk_assessments
		WHERE organization_id = $1 AND opportunity_id = $2`

	var a domain.RiskAssessment
	var categories []byte
	err := r.db.QueryRowxContext(ctx, query, orgID, oppID).Scan(
		&a.ID, &a.OrganizationID, &a.OpportunityID, &a.OverallRiskLevel,
		&a.OverallRiskScore, &categories, pq.Array(&a.RiskFactors),
		pq.Array(&a.MitigationSuggestions), &a.AssessedAt, &a.ModelVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get risk assessment: %w", err)
	}

	var byName map[string]domain.RiskCategory
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &byName); err != nil {
			return nil, fmt.Errorf("failed to decode risk categories: %w", err)
		}
	}
	a.EligibilityRisk = byName["eligibility"]
	a.TechnicalRisk = byName["technical"]
	a.PricingRisk = byName["pricing"]
	a.ResourceRisk = byName["resource"]
	a.ComplianceRisk = byName["compliance"]
	a.TimelineRisk = byName["timeline"]
	return &a, nil
}
