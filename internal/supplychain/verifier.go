// Package supplychain verifies suppliers against federal supply-chain
// requirements: Section 889 prohibited-entity screening and TAA
// country-of-origin validation, composed into a supplier risk score.
package supplychain

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/fedscout/fedscout/internal/rules"
	"github.com/fedscout/fedscout/internal/scoring"
)

// ComplianceStatus is a verification verdict.
type ComplianceStatus string

const (
	StatusCompliant      ComplianceStatus = "compliant"
	StatusNonCompliant   ComplianceStatus = "non_compliant"
	StatusProhibited     ComplianceStatus = "prohibited"
	StatusUnknown        ComplianceStatus = "unknown"
	StatusRequiresReview ComplianceStatus = "requires_review"
)

// Component is one supplied part, screened by name and manufacturer.
type Component struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
}

// Section889Result is the outcome of a prohibited-entity screen.
type Section889Result struct {
	SupplierName              string           `json:"supplier_name"`
	Status                    ComplianceStatus `json:"status"`
	ProhibitedEntitiesMatched []string         `json:"prohibited_entities_matched"`
	RiskIndicators            []string         `json:"risk_indicators"`
	Recommendation            string           `json:"recommendation"`
	CheckedAt                 time.Time        `json:"checked_at"`
}

// TAAResult is the outcome of a country-of-origin check.
type TAAResult struct {
	CountryCode  string           `json:"country_code"`
	CountryName  string           `json:"country_name"`
	Status       ComplianceStatus `json:"status"`
	IsDesignated bool             `json:"is_designated_country"`
	IsProhibited bool             `json:"is_prohibited"`
	Notes        string           `json:"notes"`
	CheckedAt    time.Time        `json:"checked_at"`
}

// SupplierVerification is the combined verdict for one supplier.
type SupplierVerification struct {
	SupplierID       string           `json:"supplier_id"`
	SupplierName     string           `json:"supplier_name"`
	Verified         bool             `json:"verified"`
	Section889       Section889Result `json:"section_889_result"`
	TAA              *TAAResult       `json:"taa_result,omitempty"`
	OverallRiskScore float64          `json:"overall_risk_score"`
	RiskLevel        string           `json:"risk_level"`
	RiskFactors      []string         `json:"risk_factors"`
	Recommendations  []string         `json:"recommendations"`
	VerifiedAt       time.Time        `json:"verified_at"`
}

// Verifier runs supply-chain compliance checks.
type Verifier struct {
	now func() time.Time
}

// NewVerifier returns a Verifier using the wall clock.
func NewVerifier() *Verifier {
	return &Verifier{now: time.Now}
}

// NewVerifierAt returns a Verifier with an injected clock.
func NewVerifierAt(now func() time.Time) *Verifier {
	return &Verifier{now: now}
}

// VerifySupplier runs the Section 889 screen, the TAA check when a
// country is given, and composes the overall risk verdict. An empty
// supplierID is derived from the name.
func (v *Verifier) VerifySupplier(supplierName, supplierID, countryOfOrigin string, components []Component) SupplierVerification {
	if supplierID == "" {
		supplierID = deriveSupplierID(supplierName)
	}

	section889 := v.CheckSection889(supplierName, components)

	var taa *TAAResult
	if countryOfOrigin != "" {
		result := v.CheckTAA(countryOfOrigin)
		taa = &result
	}

	score, level, factors := composeRisk(section889, taa)

	return SupplierVerification{
		SupplierID:       supplierID,
		SupplierName:     supplierName,
		Verified:         true,
		Section889:       section889,
		TAA:              taa,
		OverallRiskScore: score,
		RiskLevel:        level,
		RiskFactors:      factors,
		Recommendations:  recommendations(section889, taa, level),
		VerifiedAt:       v.now().UTC(),
	}
}

// CheckSection889 screens a supplier name and optional components
// against the prohibited-entity and brand tables. Entity keys match as
// substrings in either direction.
func (v *Verifier) CheckSection889(supplierName string, components []Component) Section889Result {
	supplierLower := strings.ToLower(strings.TrimSpace(supplierName))
	var matched, indicators []string

	for key, entityName := range rules.ProhibitedEntities() {
		if strings.Contains(supplierLower, key) || strings.Contains(key, supplierLower) {
			matched = append(matched, entityName)
		}
	}

	brandKeys := sortedKeys(rules.ProhibitedBrands())
	for _, brand := range brandKeys {
		if !strings.Contains(supplierLower, brand) {
			continue
		}
		if mapsTo := rules.ProhibitedBrands()[brand]; mapsTo == rules.RequiresReview {
			indicators = append(indicators, fmt.Sprintf("Brand '%s' requires additional review", brand))
		} else {
			matched = append(matched, fmt.Sprintf("%s (via brand: %s)", rules.EntityName(mapsTo), brand))
		}
	}

	for _, component := range components {
		compName := strings.ToLower(component.Name)
		compManufacturer := strings.ToLower(component.Manufacturer)
		for key, entityName := range rules.ProhibitedEntities() {
			if strings.Contains(compName, key) || strings.Contains(compManufacturer, key) {
				label := component.Name
				if label == "" {
					label = "Unknown"
				}
				matched = append(matched, fmt.Sprintf("%s (component: %s)", entityName, label))
			}
		}
	}

	for _, keyword := range sortedKeys(rules.RiskIndicators()) {
		if strings.Contains(supplierLower, keyword) {
			advisory := rules.RiskIndicators()[keyword]
			if !contains(indicators, advisory) {
				indicators = append(indicators, advisory)
			}
		}
	}

	sort.Strings(matched)
	matched = dedupe(matched)

	var status ComplianceStatus
	var recommendation string
	switch {
	case len(matched) > 0:
		status = StatusProhibited
		recommendation = "DO NOT PROCEED - Supplier matches Section 889 prohibited entities"
	case len(indicators) > 0:
		status = StatusRequiresReview
		recommendation = "Additional verification required before procurement"
	default:
		status = StatusCompliant
		recommendation = "No Section 889 prohibitions identified"
	}

	return Section889Result{
		SupplierName:              supplierName,
		Status:                    status,
		ProhibitedEntitiesMatched: matched,
		RiskIndicators:            indicators,
		Recommendation:            recommendation,
		CheckedAt:                 v.now().UTC(),
	}
}

// CheckTAA validates a country of origin against the TAA designated
// list and the sanctions list.
func (v *Verifier) CheckTAA(countryCode string) TAAResult {
	code := strings.ToUpper(strings.TrimSpace(countryCode))

	country, found := rules.LookupCountry(code)
	if !found {
		return TAAResult{
			CountryCode:  code,
			CountryName:  "Unknown",
			Status:       StatusUnknown,
			IsDesignated: false,
			IsProhibited: false,
			Notes:        fmt.Sprintf("Country code '%s' not found in database. Manual verification required.", code),
			CheckedAt:    v.now().UTC(),
		}
	}

	prohibited := rules.CountrySanctioned(code)

	var status ComplianceStatus
	var notes string
	switch {
	case prohibited:
		status = StatusProhibited
		notes = fmt.Sprintf("%s is subject to US sanctions. Procurement prohibited.", country.Name)
	case country.Designated:
		status = StatusCompliant
		notes = fmt.Sprintf("%s is a TAA designated country.", country.Name)
	default:
		status = StatusNonCompliant
		notes = fmt.Sprintf("%s is NOT a TAA designated country. Products may not be procured for federal contracts unless substantially transformed in a designated country.", country.Name)
	}

	return TAAResult{
		CountryCode:  code,
		CountryName:  country.Name,
		Status:       status,
		IsDesignated: country.Designated && !prohibited,
		IsProhibited: prohibited,
		Notes:        notes,
		CheckedAt:    v.now().UTC(),
	}
}

// BatchCheckTAA checks multiple country codes.
func (v *Verifier) BatchCheckTAA(countryCodes []string) map[string]TAAResult {
	results := make(map[string]TAAResult, len(countryCodes))
	for _, code := range countryCodes {
		results[code] = v.CheckTAA(code)
	}
	return results
}

func composeRisk(section889 Section889Result, taa *TAAResult) (float64, string, []string) {
	score := 0.0
	var factors []string

	switch section889.Status {
	case StatusProhibited:
		score = 1.0
		factors = append(factors, "Section 889 PROHIBITED entity match")
	case StatusRequiresReview:
		score += 0.4
		factors = append(factors, section889.RiskIndicators...)
	}

	if taa != nil {
		switch taa.Status {
		case StatusProhibited:
			if score < 1.0 {
				score = 1.0
			}
			factors = append(factors, fmt.Sprintf("Sanctioned country: %s", taa.CountryName))
		case StatusNonCompliant:
			score += 0.5
			factors = append(factors, fmt.Sprintf("Non-TAA country: %s", taa.CountryName))
		case StatusUnknown:
			score += 0.3
			factors = append(factors, "Country of origin verification required")
		}
	} else {
		score += 0.2
		factors = append(factors, "Country of origin not provided")
	}

	if score > 1.0 {
		score = 1.0
	}

	var level string
	switch {
	case score >= 0.8:
		level = "critical"
	case score >= 0.5:
		level = "high"
	case score >= 0.25:
		level = "medium"
	default:
		level = "low"
	}

	return scoring.Round4(score), level, factors
}

func recommendations(section889 Section889Result, taa *TAAResult, riskLevel string) []string {
	var recs []string

	switch section889.Status {
	case StatusProhibited:
		recs = append(recs,
			"DO NOT PROCEED with this supplier - Section 889 violation",
			"Identify alternative suppliers from compliant sources")
	case StatusRequiresReview:
		recs = append(recs,
			"Request supplier's Section 889 compliance certification",
			"Obtain detailed product/component listing with manufacturers")
	}

	if taa != nil {
		switch taa.Status {
		case StatusProhibited:
			recs = append(recs, "DO NOT PROCEED - Sanctioned country of origin")
		case StatusNonCompliant:
			recs = append(recs,
				"Request Certificate of Origin documentation",
				"Verify if product is substantially transformed in designated country",
				"Consider alternative suppliers from TAA-compliant countries")
		case StatusUnknown:
			recs = append(recs, "Verify country of origin with supplier")
		}
	} else {
		recs = append(recs, "Request country of origin information from supplier")
	}

	if riskLevel == "high" {
		recs = append(recs,
			"Consult with contracting officer before proceeding",
			"Document all compliance verification steps")
	}

	if len(recs) == 0 {
		recs = append(recs,
			"Supplier passes initial compliance screening",
			"Maintain documentation for audit purposes")
	}

	return recs
}

func deriveSupplierID(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("SUP-%05d", h.Sum32()%100000)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(in []string, s string) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	out := in[:0]
	var prev string
	for i, s := range in {
		if i == 0 || s != prev {
			out = append(out, s)
		}
		prev = s
	}
	return out
}
