// Package persistence defines the repository contracts for the match
// engine's stored entities. Implementations live in subpackages; the
// postgres implementation is the production path.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fedscout/fedscout/internal/domain"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("persistence: not found")

	// ErrValidation is returned when an entity violates a schema
	// constraint before reaching the database.
	ErrValidation = errors.New("persistence: validation failed")
)

// OpportunityFilter narrows List queries. Zero values mean "any".
type OpportunityFilter struct {
	Status      domain.OpportunityStatus
	NAICSPrefix string
	SetAside    string
	State       string
	Limit       int
	Offset      int
}

// OrganizationRepo stores contractor profiles.
type OrganizationRepo interface {
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	List(ctx context.Context, limit, offset int) ([]domain.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OpportunityRepo stores canonical procurement notices. Upsert is a
// single statement keyed by (source_system, source_id) and reports
// whether the row was newly inserted.
type OpportunityRepo interface {
	Upsert(ctx context.Context, opp *domain.Opportunity) (inserted bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error)
	GetBySource(ctx context.Context, sourceSystem, sourceID string) (*domain.Opportunity, error)
	List(ctx context.Context, filter OpportunityFilter) ([]domain.Opportunity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScoreRepo stores scoring outputs, one row per (organization,
// opportunity) pair, upserted on recalculation.
type ScoreRepo interface {
	UpsertRelevance(ctx context.Context, score *domain.RelevanceScore) error
	GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, error)
	UpsertRiskAssessment(ctx context.Context, assessment *domain.RiskAssessment) error
	GetRiskAssessment(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RiskAssessment, error)
}

// IngestionLogRepo tracks ingestion job lifecycles.
type IngestionLogRepo interface {
	Create(ctx context.Context, log *domain.IngestionLog) error
	Update(ctx context.Context, log *domain.IngestionLog) error
	Get(ctx context.Context, id uuid.UUID) (*domain.IngestionLog, error)
	ListRecent(ctx context.Context, limit int) ([]domain.IngestionLog, error)
}
