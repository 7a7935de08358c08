// Package http exposes the decision-support engines over a JSON API.
package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/fedscout/fedscout/internal/supplychain"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PairRequest identifies one (organization, opportunity) pair.
type PairRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	OpportunityID  uuid.UUID `json:"opportunity_id"`
}

// BatchScoreRequest scores one organization against many
// opportunities.
type BatchScoreRequest struct {
	OrganizationID uuid.UUID   `json:"organization_id"`
	OpportunityIDs []uuid.UUID `json:"opportunity_ids"`
}

// VerifySupplierRequest screens one supplier.
type VerifySupplierRequest struct {
	SupplierName    string                  `json:"supplier_name"`
	SupplierID      string                  `json:"supplier_id,omitempty"`
	CountryOfOrigin string                  `json:"country_of_origin,omitempty"`
	Components      []supplychain.Component `json:"components,omitempty"`
}

// TAACheckRequest screens one country of origin.
type TAACheckRequest struct {
	CountryCode string `json:"country_code"`
}

// TAABatchRequest screens several countries at once.
type TAABatchRequest struct {
	CountryCodes []string `json:"country_codes"`
}

// TAABatchSummary tallies the verdicts of a batch check.
type TAABatchSummary struct {
	TotalChecked int `json:"total_checked"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	Prohibited   int `json:"prohibited"`
}

// TAABatchResponse carries per-country results plus the tally.
type TAABatchResponse struct {
	Results map[string]supplychain.TAAResult `json:"results"`
	Summary TAABatchSummary                  `json:"summary"`
}

// PricingRequest asks for a price recommendation.
type PricingRequest struct {
	OpportunityID uuid.UUID      `json:"opportunity_id"`
	LaborMix      map[string]int `json:"labor_mix,omitempty"`
}

// ShouldCostRequest builds a bottom-up cost estimate.
type ShouldCostRequest struct {
	LaborMix       map[string]int `json:"labor_mix"`
	DurationMonths int            `json:"duration_months"`
	OverheadRate   float64        `json:"overhead_rate"`
	ProfitMargin   float64        `json:"profit_margin"`
}

// ProposalRequest drafts proposal sections for a pair.
type ProposalRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	OpportunityID  uuid.UUID `json:"opportunity_id"`
	Sections       []string  `json:"sections,omitempty"`
}

// IngestionTriggerRequest narrows a triggered feed pull.
type IngestionTriggerRequest struct {
	NAICSCodes []string `json:"naics_codes,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// ListResponse wraps paginated collections.
type ListResponse struct {
	Items  interface{} `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Count  int         `json:"count"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
