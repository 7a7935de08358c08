package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Organization is a contractor profile evaluated against opportunities.
type Organization struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	LegalName *string   `json:"legal_name,omitempty" db:"legal_name"`

	// Federal registration identifiers
	UEI      *string `json:"uei,omitempty" db:"uei"`
	DUNS     *string `json:"duns,omitempty" db:"duns"`
	CageCode *string `json:"cage_code,omitempty" db:"cage_code"`

	// Classification
	NAICSCodes    []string `json:"naics_codes" db:"naics_codes"`
	PSCCodes      []string `json:"psc_codes" db:"psc_codes"`
	SetAsideTypes []string `json:"set_aside_types" db:"set_aside_types"`

	// Address
	AddressLine1 *string `json:"address_line1,omitempty" db:"address_line1"`
	City         *string `json:"city,omitempty" db:"city"`
	State        *string `json:"state,omitempty" db:"state"`
	ZipCode      *string `json:"zip_code,omitempty" db:"zip_code"`
	Country      string  `json:"country" db:"country"`

	// Scale
	EmployeeCount *int             `json:"employee_count,omitempty" db:"employee_count"`
	AnnualRevenue *decimal.Decimal `json:"annual_revenue,omitempty" db:"annual_revenue"`

	// Narratives
	CapabilitiesNarrative  *string `json:"capabilities_narrative,omitempty" db:"capabilities_narrative"`
	PastPerformanceSummary *string `json:"past_performance_summary,omitempty" db:"past_performance_summary"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StateCode returns the uppercased two-letter state, or "" when unset.
func (o *Organization) StateCode() string {
	if o.State == nil {
		return ""
	}
	return normalizeState(*o.State)
}

// Capabilities returns the capabilities narrative, or "" when unset.
func (o *Organization) Capabilities() string {
	if o.CapabilitiesNarrative == nil {
		return ""
	}
	return *o.CapabilitiesNarrative
}

// PastPerformance returns the past performance summary, or "" when unset.
func (o *Organization) PastPerformance() string {
	if o.PastPerformanceSummary == nil {
		return ""
	}
	return *o.PastPerformanceSummary
}
