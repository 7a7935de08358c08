// Package winprob predicts the probability of winning an opportunity
// from seven weighted factors, each paired with a one-line analysis
// string, plus a pursuit recommendation and a data-completeness
// confidence estimate.
package winprob

import (
	"fmt"
	"math"
	"strings"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/naics"
	"github.com/fedscout/fedscout/internal/rules"
	"github.com/fedscout/fedscout/internal/scoring"
	"github.com/fedscout/fedscout/internal/text"
)

// Factor keys.
const (
	FactorCapability  = "capability_match"
	FactorSetAside    = "setaside_eligibility"
	FactorPastPerf    = "past_performance"
	FactorAgency      = "agency_relationship"
	FactorGeographic  = "geographic_fit"
	FactorCompetition = "competition_level"
	FactorPricing     = "pricing_position"
)

// DefaultWeights returns the stock factor weighting.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		FactorCapability:  0.20,
		FactorSetAside:    0.20,
		FactorPastPerf:    0.20,
		FactorAgency:      0.15,
		FactorGeographic:  0.10,
		FactorCompetition: 0.10,
		FactorPricing:     0.05,
	}
}

var factorKeys = []string{
	FactorCapability, FactorSetAside, FactorPastPerf,
	FactorAgency, FactorGeographic, FactorCompetition, FactorPricing,
}

// Result is one win-probability prediction.
type Result struct {
	OpportunityID  string             `json:"opportunity_id"`
	WinProbability float64            `json:"win_probability"`
	MatchScore     float64            `json:"match_score"`
	Factors        map[string]float64 `json:"factors"`
	Recommendation string             `json:"recommendation"`
	Confidence     float64            `json:"confidence"`
	Analysis       map[string]string  `json:"analysis"`
}

// Model computes win probability. Weights are injectable and must
// cover the seven factor keys and sum to 1.
type Model struct {
	weights map[string]float64
}

// NewModel builds a Model; nil weights selects DefaultWeights.
func NewModel(weights map[string]float64) (*Model, error) {
	if weights == nil {
		return &Model{weights: DefaultWeights()}, nil
	}
	if len(weights) != len(factorKeys) {
		return nil, fmt.Errorf("winprob: expected %d factor weights, got %d", len(factorKeys), len(weights))
	}
	sum := 0.0
	for _, key := range factorKeys {
		w, ok := weights[key]
		if !ok {
			return nil, fmt.Errorf("winprob: missing factor weight %q", key)
		}
		if w < 0 {
			return nil, fmt.Errorf("winprob: factor weight %q must be non-negative, got %v", key, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("winprob: factor weights must sum to 1, got %v", sum)
	}

	copied := make(map[string]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	return &Model{weights: copied}, nil
}

// Predict evaluates one (organization, opportunity) pair.
func (m *Model) Predict(org *domain.Organization, opp *domain.Opportunity) Result {
	factors := make(map[string]float64, len(factorKeys))
	analysis := make(map[string]string, len(factorKeys))

	factors[FactorCapability], analysis[FactorCapability] = m.capabilityMatch(org, opp)
	factors[FactorSetAside], analysis[FactorSetAside] = m.setAsideEligibility(org, opp)
	factors[FactorPastPerf], analysis[FactorPastPerf] = m.pastPerformance(org, opp)
	factors[FactorAgency], analysis[FactorAgency] = m.agencyRelationship(org, opp)
	factors[FactorGeographic], analysis[FactorGeographic] = m.geographicFit(org, opp)
	factors[FactorCompetition], analysis[FactorCompetition] = m.competitionLevel(opp)
	factors[FactorPricing], analysis[FactorPricing] = m.pricingPosition(org, opp)

	winProb := 0.0
	for _, key := range factorKeys {
		winProb += factors[key] * m.weights[key]
	}

	matchScore := (factors[FactorCapability] + factors[FactorSetAside]) / 2

	return Result{
		OpportunityID:  opp.ID.String(),
		WinProbability: scoring.Round4(winProb),
		MatchScore:     scoring.Round4(matchScore),
		Factors:        factors,
		Recommendation: Recommendation(winProb),
		Confidence:     scoring.Round4(confidence(org, opp, factors)),
		Analysis:       analysis,
	}
}

func (m *Model) capabilityMatch(org *domain.Organization, opp *domain.Opportunity) (float64, string) {
	score := 0.0
	var reasons []string

	if oppNAICS := opp.NAICS(); oppNAICS != "" && len(org.NAICSCodes) > 0 {
		for _, orgCode := range org.NAICSCodes {
			switch l := naics.PrefixLength(oppNAICS, strings.TrimSpace(orgCode)); {
			case l >= 6:
				score = math.Max(score, 1.0)
				reasons = append(reasons, fmt.Sprintf("Exact NAICS %s match", oppNAICS))
			case l == 5:
				score = math.Max(score, 0.9)
				reasons = append(reasons, "Strong NAICS match (5-digit)")
			case l == 4:
				score = math.Max(score, 0.75)
				reasons = append(reasons, "Good NAICS match (4-digit)")
			case l == 3:
				score = math.Max(score, 0.5)
				reasons = append(reasons, "Partial NAICS match (3-digit)")
			case l == 2:
				score = math.Max(score, 0.25)
				reasons = append(reasons, "Related industry sector")
			}
		}
	}

	if opp.PSCCode != nil && len(org.PSCCodes) > 0 {
		for _, psc := range org.PSCCodes {
			if psc == *opp.PSCCode {
				score = math.Min(1.0, score+0.15)
				reasons = append(reasons, fmt.Sprintf("PSC %s match", *opp.PSCCode))
				break
			}
		}
	}

	if org.CapabilitiesNarrative != nil && opp.Description != nil {
		descLower := strings.ToLower(*opp.Description)
		matches := 0
		for kw := range text.CapabilityKeywords(*org.CapabilitiesNarrative) {
			if strings.Contains(descLower, kw) {
				matches++
			}
		}
		if matches > 3 {
			score = math.Min(1.0, score+0.1)
			reasons = append(reasons, fmt.Sprintf("Strong keyword alignment (%d matches)", matches))
		}
	}

	if len(reasons) == 0 {
		return scoring.Round4(score), "Limited capability data for analysis"
	}
	return scoring.Round4(score), strings.Join(reasons, "; ")
}

func (m *Model) setAsideEligibility(org *domain.Organization, opp *domain.Opportunity) (float64, string) {
	if opp.SetAsideType == nil || strings.TrimSpace(*opp.SetAsideType) == "" {
		return 0.6, "Full and open competition - no set-aside restrictions"
	}

	required := opp.SetAside()

	if len(org.SetAsideTypes) == 0 {
		if strings.Contains(required, "SB") || strings.Contains(required, "SMALL") {
			return 0.3, fmt.Sprintf("Set-aside type '%s' - eligibility unknown", *opp.SetAsideType)
		}
		return 0.5, "No set-aside certifications on file"
	}

	if rules.SetAsideEligible(required, org.SetAsideTypes) {
		return 1.0, fmt.Sprintf("Eligible for %s set-aside", *opp.SetAsideType)
	}
	return 0.1, fmt.Sprintf("Not eligible for %s set-aside", *opp.SetAsideType)
}

// contractVehicles pairs vehicle abbreviations with the narrative terms
// that indicate experience with that vehicle.
var contractVehicles = []struct {
	abbrev   string
	keywords []string
}{
	{"ffp", []string{"fixed", "firm"}},
	{"t&m", []string{"time", "materials"}},
	{"cpff", []string{"cost", "plus"}},
	{"idiq", []string{"idiq", "task order"}},
}

func (m *Model) pastPerformance(org *domain.Organization, opp *domain.Opportunity) (float64, string) {
	if org.PastPerformanceSummary == nil || *org.PastPerformanceSummary == "" {
		return 0.4, "No past performance summary on file"
	}

	summary := strings.ToLower(*org.PastPerformanceSummary)
	score := 0.4
	var reasons []string

	if opp.NAICS() != "" {
		desc := ""
		if opp.NAICSDescription != nil {
			desc = strings.ToLower(*opp.NAICSDescription)
		}
		if anyLongWordIn(summary, strings.Fields(desc), 3) {
			score += 0.2
			reasons = append(reasons, "Relevant industry experience")
		}
	}

	if opp.ContractingOfficeName != nil {
		words := strings.Fields(strings.ToLower(*opp.ContractingOfficeName))
		if anyLongWordIn(summary, words, 2) {
			score += 0.2
			reasons = append(reasons, "Agency experience")
		}
	}

	if opp.ContractType != nil {
		ct := strings.ToLower(*opp.ContractType)
		for _, vehicle := range contractVehicles {
			if strings.Contains(ct, vehicle.abbrev) && containsAny(summary, vehicle.keywords) {
				score += 0.15
				reasons = append(reasons, fmt.Sprintf("%s contract experience", strings.ToUpper(vehicle.abbrev)))
				break
			}
		}
	}

	analysis := "General past performance on file"
	if len(reasons) > 0 {
		analysis = strings.Join(reasons, "; ")
	}
	return scoring.Round4(math.Min(1.0, score)), analysis
}

// agencyFamilies maps agency shorthand to the terms that identify it in
// both contracting-office names and past-performance narratives.
var agencyFamilies = []struct {
	agency   string
	keywords []string
}{
	{"dod", []string{"defense", "army", "navy", "air force", "marine", "pentagon"}},
	{"va", []string{"veterans", "va ", "vha", "vba"}},
	{"dhs", []string{"homeland", "fema", "tsa", "ice", "cbp"}},
	{"hhs", []string{"health", "human services", "cdc", "fda", "nih"}},
	{"gsa", []string{"gsa", "federal acquisition", "public building"}},
	{"doj", []string{"justice", "fbi", "dea", "atf", "marshal"}},
	{"treasury", []string{"treasury", "irs", "mint"}},
}

func (m *Model) agencyRelationship(org *domain.Organization, opp *domain.Opportunity) (float64, string) {
	if opp.ContractingOfficeName == nil || *opp.ContractingOfficeName == "" {
		return 0.5, "Contracting office not specified"
	}
	if org.PastPerformanceSummary == nil || *org.PastPerformanceSummary == "" {
		return 0.3, "No agency relationship history available"
	}

	office := strings.ToLower(*opp.ContractingOfficeName)
	summary := strings.ToLower(*org.PastPerformanceSummary)

	for _, fam := range agencyFamilies {
		if containsAny(office, fam.keywords) && containsAny(summary, fam.keywords) {
			return 0.8, fmt.Sprintf("Prior %s experience", strings.ToUpper(fam.agency))
		}
	}

	if len(summary) > 100 {
		return 0.5, "General federal contracting experience"
	}
	return 0.3, "No direct agency relationship identified"
}

func (m *Model) geographicFit(org *domain.Organization, opp *domain.Opportunity) (float64, string) {
	orgState := org.StateCode()
	oppState := opp.PerformanceState()

	if orgState == "" || oppState == "" {
		return 0.6, "Geographic location not specified"
	}
	if orgState == oppState {
		return 1.0, fmt.Sprintf("Located in %s", oppState)
	}
	if rules.InDCMetro(orgState) && rules.InDCMetro(oppState) {
		return 0.9, "DC metro area presence"
	}
	if rules.StatesAdjacent(orgState, oppState) {
		return 0.75, fmt.Sprintf("Adjacent to %s", oppState)
	}
	if opp.Description != nil {
		desc := strings.ToLower(*opp.Description)
		if strings.Contains(desc, "remote") || strings.Contains(desc, "telework") {
			return 0.8, "Remote/telework eligible"
		}
	}
	return 0.4, fmt.Sprintf("Located in %s, opportunity in %s", orgState, oppState)
}

func (m *Model) competitionLevel(opp *domain.Opportunity) (float64, string) {
	if opp.NoticeType == nil || *opp.NoticeType == "" {
		return 0.5, "Competition level unknown"
	}
	notice := strings.ToLower(*opp.NoticeType)

	switch {
	case strings.Contains(notice, "sole source"), strings.Contains(notice, "j&a"):
		return 0.2, "Sole source - pre-selected vendor likely"
	case strings.Contains(notice, "sources sought"), strings.Contains(notice, "rfi"):
		return 0.7, "Market research phase - early opportunity"
	case strings.Contains(notice, "presolicitation"):
		return 0.6, "Presolicitation - good time for positioning"
	case strings.Contains(notice, "combined"), strings.Contains(notice, "solicitation"):
		return 0.5, "Active solicitation - competitive"
	case strings.Contains(notice, "award"):
		return 0.1, "Award notice - opportunity closed"
	}
	return 0.5, "Standard competition expected"
}

func (m *Model) pricingPosition(org *domain.Organization, opp *domain.Opportunity) (float64, string) {
	if opp.EstimatedValueMax == nil || org.AnnualRevenue == nil || !org.AnnualRevenue.IsPositive() {
		return 0.6, "Contract value or revenue data unavailable"
	}

	ratio := opp.EstimatedValueMax.InexactFloat64() / org.AnnualRevenue.InexactFloat64()
	pctStr := fmt.Sprintf("%.1f%%", ratio*100)

	switch {
	case ratio < 0.1:
		return 0.9, fmt.Sprintf("Contract size (%s of revenue) - very manageable", pctStr)
	case ratio < 0.3:
		return 1.0, fmt.Sprintf("Ideal contract size (%s of revenue)", pctStr)
	case ratio < 0.5:
		return 0.85, fmt.Sprintf("Good fit (%s of revenue)", pctStr)
	case ratio < 1.0:
		return 0.6, fmt.Sprintf("Stretch opportunity (%s of revenue)", pctStr)
	case ratio < 2.0:
		return 0.4, fmt.Sprintf("Significant commitment (%s of revenue)", pctStr)
	default:
		return 0.2, fmt.Sprintf("Contract may exceed capacity (%s of revenue)", pctStr)
	}
}

// Recommendation bands a win probability into a pursuit decision.
func Recommendation(winProb float64) string {
	switch {
	case winProb >= 0.70:
		return "STRONG PURSUE - High probability opportunity aligned with capabilities"
	case winProb >= 0.55:
		return "PURSUE - Good fit, develop strong differentiators"
	case winProb >= 0.40:
		return "EVALUATE - Consider teaming or targeted pursuit"
	case winProb >= 0.25:
		return "SELECTIVE - Only pursue if strategically important"
	default:
		return "MONITOR ONLY - Low probability, preserve bid resources"
	}
}

// confidence estimates prediction confidence from data completeness,
// with a small bonus per strongly-signaled factor, capped at 0.95.
func confidence(org *domain.Organization, opp *domain.Opportunity, factors map[string]float64) float64 {
	c := 0.5

	if len(org.NAICSCodes) > 0 {
		c += 0.1
	}
	if org.PastPerformanceSummary != nil && *org.PastPerformanceSummary != "" {
		c += 0.1
	}
	if len(org.SetAsideTypes) > 0 {
		c += 0.05
	}
	if org.AnnualRevenue != nil {
		c += 0.05
	}

	if opp.NAICS() != "" {
		c += 0.05
	}
	if opp.Description != nil && len(*opp.Description) > 100 {
		c += 0.05
	}
	if opp.EstimatedValueMax != nil {
		c += 0.05
	}

	for _, v := range factors {
		if v > 0.8 || v < 0.2 {
			c += 0.02
		}
	}

	return math.Min(0.95, c)
}

// anyLongWordIn reports whether any of the first limit words longer
// than 3 characters appears as a substring of haystack.
func anyLongWordIn(haystack string, words []string, limit int) bool {
	if len(words) > limit {
		words = words[:limit]
	}
	for _, w := range words {
		if len(w) > 3 && strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
