package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpportunityStatus tracks the lifecycle of a procurement notice.
type OpportunityStatus string

const (
	StatusForecast        OpportunityStatus = "forecast"
	StatusPresolicitation OpportunityStatus = "presolicitation"
	StatusActive          OpportunityStatus = "active"
	StatusClosed          OpportunityStatus = "closed"
	StatusAwarded         OpportunityStatus = "awarded"
	StatusCancelled       OpportunityStatus = "cancelled"
	StatusArchived        OpportunityStatus = "archived"
)

// ValidStatus reports whether s is a known opportunity status.
func ValidStatus(s OpportunityStatus) bool {
	switch s {
	case StatusForecast, StatusPresolicitation, StatusActive,
		StatusClosed, StatusAwarded, StatusCancelled, StatusArchived:
		return true
	}
	return false
}

// Opportunity is a canonical procurement notice. The natural key
// (SourceSystem, SourceID) is unique; re-ingestion updates in place.
type Opportunity struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SourceID     string    `json:"source_id" db:"source_id"`
	SourceSystem string    `json:"source_system" db:"source_system"`

	Title              string  `json:"title" db:"title"`
	Description        *string `json:"description,omitempty" db:"description"`
	NoticeType         *string `json:"notice_type,omitempty" db:"notice_type"`
	SolicitationNumber *string `json:"solicitation_number,omitempty" db:"solicitation_number"`

	NAICSCode        *string `json:"naics_code,omitempty" db:"naics_code"`
	NAICSDescription *string `json:"naics_description,omitempty" db:"naics_description"`
	PSCCode          *string `json:"psc_code,omitempty" db:"psc_code"`
	PSCDescription   *string `json:"psc_description,omitempty" db:"psc_description"`
	SetAsideType     *string `json:"set_aside_type,omitempty" db:"set_aside_type"`

	PostedDate       *time.Time `json:"posted_date,omitempty" db:"posted_date"`
	ResponseDeadline *time.Time `json:"response_deadline,omitempty" db:"response_deadline"`
	ArchiveDate      *time.Time `json:"archive_date,omitempty" db:"archive_date"`

	ContractType      *string          `json:"contract_type,omitempty" db:"contract_type"`
	EstimatedValueMin *decimal.Decimal `json:"estimated_value_min,omitempty" db:"estimated_value_min"`
	EstimatedValueMax *decimal.Decimal `json:"estimated_value_max,omitempty" db:"estimated_value_max"`

	PlaceOfPerformanceCity    *string `json:"place_of_performance_city,omitempty" db:"place_of_performance_city"`
	PlaceOfPerformanceState   *string `json:"place_of_performance_state,omitempty" db:"place_of_performance_state"`
	PlaceOfPerformanceZip     *string `json:"place_of_performance_zip,omitempty" db:"place_of_performance_zip"`
	PlaceOfPerformanceCountry *string `json:"place_of_performance_country,omitempty" db:"place_of_performance_country"`

	ContractingOfficeName *string `json:"contracting_office_name,omitempty" db:"contracting_office_name"`
	PointOfContactName    *string `json:"point_of_contact_name,omitempty" db:"point_of_contact_name"`
	PointOfContactEmail   *string `json:"point_of_contact_email,omitempty" db:"point_of_contact_email"`
	PointOfContactPhone   *string `json:"point_of_contact_phone,omitempty" db:"point_of_contact_phone"`

	SecurityClearanceRequired *string `json:"security_clearance_required,omitempty" db:"security_clearance_required"`

	Status OpportunityStatus `json:"status" db:"status"`

	// Original feed payload, preserved for audit.
	RawData map[string]interface{} `json:"raw_data,omitempty" db:"raw_data"`

	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	IngestedAt time.Time `json:"ingested_at" db:"ingested_at"`
}

// PerformanceState returns the uppercased place-of-performance state.
func (o *Opportunity) PerformanceState() string {
	if o.PlaceOfPerformanceState == nil {
		return ""
	}
	return normalizeState(*o.PlaceOfPerformanceState)
}

// DescriptionText returns the description, or "" when unset.
func (o *Opportunity) DescriptionText() string {
	if o.Description == nil {
		return ""
	}
	return *o.Description
}

// NAICS returns the trimmed NAICS code, or "" when unset.
func (o *Opportunity) NAICS() string {
	if o.NAICSCode == nil {
		return ""
	}
	return strings.TrimSpace(*o.NAICSCode)
}

// SetAside returns the uppercased set-aside designation, or "" when open.
func (o *Opportunity) SetAside() string {
	if o.SetAsideType == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*o.SetAsideType))
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
