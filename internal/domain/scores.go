package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel bands a [0,1] risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RelevanceScore is the persisted relevance judgment for an
// (organization, opportunity) pair. All scalars are in [0,1] and
// rounded to 4 decimals. Overall is the weighted sum of the sub-scores.
type RelevanceScore struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	OpportunityID  uuid.UUID `json:"opportunity_id" db:"opportunity_id"`

	OverallScore         float64 `json:"overall_score" db:"overall_score"`
	NAICSScore           float64 `json:"naics_score" db:"naics_score"`
	SemanticScore        float64 `json:"semantic_score" db:"semantic_score"`
	GeographicScore      float64 `json:"geographic_score" db:"geographic_score"`
	SizeScore            float64 `json:"size_score" db:"size_score"`
	PastPerformanceScore float64 `json:"past_performance_score" db:"past_performance_score"`

	ComponentWeights map[string]float64 `json:"component_weights" db:"component_weights"`
	Explanation      string             `json:"explanation" db:"explanation"`

	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
	ModelVersion string    `json:"model_version" db:"model_version"`
}

// RiskCategory is one assessed risk dimension.
type RiskCategory struct {
	Level   RiskLevel `json:"level"`
	Score   float64   `json:"score"`
	Factors []string  `json:"factors"`
}

// RiskAssessment is the persisted six-category risk judgment for an
// (organization, opportunity) pair.
type RiskAssessment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	OpportunityID  uuid.UUID `json:"opportunity_id" db:"opportunity_id"`

	OverallRiskLevel RiskLevel `json:"overall_risk_level" db:"overall_risk_level"`
	OverallRiskScore float64   `json:"overall_risk_score" db:"overall_risk_score"`

	EligibilityRisk RiskCategory `json:"eligibility_risk" db:"eligibility_risk"`
	TechnicalRisk   RiskCategory `json:"technical_risk" db:"technical_risk"`
	PricingRisk     RiskCategory `json:"pricing_risk" db:"pricing_risk"`
	ResourceRisk    RiskCategory `json:"resource_risk" db:"resource_risk"`
	ComplianceRisk  RiskCategory `json:"compliance_risk" db:"compliance_risk"`
	TimelineRisk    RiskCategory `json:"timeline_risk" db:"timeline_risk"`

	RiskFactors           []string `json:"risk_factors" db:"risk_factors"`
	MitigationSuggestions []string `json:"mitigation_suggestions" db:"mitigation_suggestions"`

	AssessedAt   time.Time `json:"assessed_at" db:"assessed_at"`
	ModelVersion string    `json:"model_version" db:"model_version"`
}

// IngestionStatus tracks the lifecycle of one ingestion job.
type IngestionStatus string

const (
	IngestionQueued    IngestionStatus = "queued"
	IngestionRunning   IngestionStatus = "running"
	IngestionCompleted IngestionStatus = "completed"
	IngestionFailed    IngestionStatus = "failed"
)

// IngestionLog is one row per ingestion trigger.
type IngestionLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	SourceSystem string          `json:"source_system" db:"source_system"`
	Status       IngestionStatus `json:"status" db:"status"`
	StartedAt    time.Time       `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty" db:"completed_at"`

	RecordsFetched  int `json:"records_fetched" db:"records_fetched"`
	RecordsInserted int `json:"records_inserted" db:"records_inserted"`
	RecordsUpdated  int `json:"records_updated" db:"records_updated"`
	RecordsFailed   int `json:"records_failed" db:"records_failed"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`
}
