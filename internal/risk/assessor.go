// Package risk implements the six-category bid/no-bid risk model.
// Each category accumulates additive penalties from independent checks,
// clamps to [0,1], and bands into a level; the overall score is the
// weighted sum of the categories.
package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/rules"
	"github.com/fedscout/fedscout/internal/scoring"
)

// ModelVersion tags persisted assessments.
const ModelVersion = "1.0.0"

// Category weights for the overall score.
var categoryWeights = map[string]float64{
	"eligibility": 0.25,
	"technical":   0.20,
	"pricing":     0.15,
	"resource":    0.15,
	"compliance":  0.15,
	"timeline":    0.10,
}

// Result is one full assessment.
type Result struct {
	OverallRiskLevel domain.RiskLevel
	OverallRiskScore float64

	Eligibility domain.RiskCategory
	Technical   domain.RiskCategory
	Pricing     domain.RiskCategory
	Resource    domain.RiskCategory
	Compliance  domain.RiskCategory
	Timeline    domain.RiskCategory

	RiskFactors           []string
	MitigationSuggestions []string
}

// Assessor evaluates bid risk for (organization, opportunity) pairs.
type Assessor struct {
	now func() time.Time
}

// NewAssessor returns an Assessor using the wall clock.
func NewAssessor() *Assessor {
	return &Assessor{now: time.Now}
}

// NewAssessorAt returns an Assessor with an injected clock.
func NewAssessorAt(now func() time.Time) *Assessor {
	return &Assessor{now: now}
}

// Assess runs every category and aggregates.
func (a *Assessor) Assess(org *domain.Organization, opp *domain.Opportunity) Result {
	eligibility := a.assessEligibility(org, opp)
	technical := a.assessTechnical(org, opp)
	pricing := a.assessPricing(org, opp)
	resource := a.assessResource(org, opp)
	compliance := a.assessCompliance(org, opp)
	timeline := a.assessTimeline(opp)

	overall := eligibility.Score*categoryWeights["eligibility"] +
		technical.Score*categoryWeights["technical"] +
		pricing.Score*categoryWeights["pricing"] +
		resource.Score*categoryWeights["resource"] +
		compliance.Score*categoryWeights["compliance"] +
		timeline.Score*categoryWeights["timeline"]

	var allFactors []string
	for _, cat := range []domain.RiskCategory{eligibility, technical, pricing, resource, compliance, timeline} {
		allFactors = append(allFactors, cat.Factors...)
	}

	return Result{
		OverallRiskLevel:      Level(overall),
		OverallRiskScore:      scoring.Round4(overall),
		Eligibility:           eligibility,
		Technical:             technical,
		Pricing:               pricing,
		Resource:              resource,
		Compliance:            compliance,
		Timeline:              timeline,
		RiskFactors:           allFactors,
		MitigationSuggestions: mitigations(eligibility, technical, pricing, resource, compliance, timeline),
	}
}

// Level bands a [0,1] risk score.
func Level(score float64) domain.RiskLevel {
	switch {
	case score <= 0.25:
		return domain.RiskLow
	case score <= 0.5:
		return domain.RiskMedium
	case score <= 0.75:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

func category(score float64, factors []string) domain.RiskCategory {
	score = math.Min(1.0, score)
	if factors == nil {
		factors = []string{}
	}
	return domain.RiskCategory{Level: Level(score), Score: score, Factors: factors}
}

// assessEligibility covers set-aside qualification, clearances, and
// SAM registration. Unlike the relevance size score, the set-aside
// check fires even for organizations holding no certifications.
func (a *Assessor) assessEligibility(org *domain.Organization, opp *domain.Opportunity) domain.RiskCategory {
	var factors []string
	score := 0.0

	if required := opp.SetAside(); required != "" {
		if !rules.SetAsideEligible(required, org.SetAsideTypes) {
			factors = append(factors, fmt.Sprintf("Not eligible for %s set-aside", required))
			score += 0.8
		}
	}

	if opp.SecurityClearanceRequired != nil {
		clearance := strings.ToLower(*opp.SecurityClearanceRequired)
		if strings.Contains(clearance, "secret") || strings.Contains(clearance, "ts/sci") {
			factors = append(factors, fmt.Sprintf("Requires %s clearance", *opp.SecurityClearanceRequired))
			score += 0.4
		}
	}

	if org.UEI == nil || *org.UEI == "" {
		factors = append(factors, "No UEI on file - SAM.gov registration may be needed")
		score += 0.3
	}

	return category(score, factors)
}

func (a *Assessor) assessTechnical(org *domain.Organization, opp *domain.Opportunity) domain.RiskCategory {
	var factors []string
	score := 0.0

	if oppNAICS := opp.NAICS(); oppNAICS != "" && len(org.NAICSCodes) > 0 {
		prefix4 := oppNAICS
		if len(prefix4) > 4 {
			prefix4 = prefix4[:4]
		}
		prefix2 := prefix4
		if len(prefix2) > 2 {
			prefix2 = prefix2[:2]
		}

		if !anyHasPrefix(org.NAICSCodes, prefix2) {
			factors = append(factors, fmt.Sprintf("NAICS %s outside core competencies", oppNAICS))
			score += 0.5
		} else if !anyHasPrefix(org.NAICSCodes, prefix4) {
			factors = append(factors, fmt.Sprintf("NAICS %s is adjacent to core codes", oppNAICS))
			score += 0.2
		}
	}

	if opp.PSCCode != nil && len(org.PSCCodes) > 0 {
		psc := *opp.PSCCode
		prefix := psc
		if len(prefix) > 2 {
			prefix = prefix[:2]
		}
		if !anyHasPrefix(org.PSCCodes, prefix) {
			factors = append(factors, fmt.Sprintf("PSC %s may require new capabilities", psc))
			score += 0.3
		}
	}

	if org.CapabilitiesNarrative == nil || *org.CapabilitiesNarrative == "" {
		factors = append(factors, "No capabilities narrative on file for evaluation")
		score += 0.2
	}

	return category(score, factors)
}

func (a *Assessor) assessPricing(org *domain.Organization, opp *domain.Opportunity) domain.RiskCategory {
	var factors []string
	score := 0.0

	if opp.EstimatedValueMax != nil && org.AnnualRevenue != nil && org.AnnualRevenue.IsPositive() {
		ratio := opp.EstimatedValueMax.InexactFloat64() / org.AnnualRevenue.InexactFloat64()
		if ratio > 2.0 {
			factors = append(factors, fmt.Sprintf("Contract value (%.1fx revenue) may exceed capacity", ratio))
			score += 0.6
		} else if ratio > 1.0 {
			factors = append(factors, fmt.Sprintf("Contract value is %.1fx annual revenue - significant commitment", ratio))
			score += 0.3
		}
	}

	if opp.ContractType != nil {
		ct := strings.ToLower(*opp.ContractType)
		if strings.Contains(ct, "cost") || strings.Contains(ct, "cpff") || strings.Contains(ct, "cpaf") {
			factors = append(factors, "Cost-reimbursement contract requires robust accounting systems")
			score += 0.2
		}
	}

	if opp.NoticeType != nil {
		nt := strings.ToLower(*opp.NoticeType)
		switch {
		case strings.Contains(nt, "sole source"), strings.Contains(nt, "j&a"):
			// Low competition; no penalty.
		case strings.Contains(nt, "sources sought"):
			factors = append(factors, "Early stage - competition level unknown")
			score += 0.1
		}
	}

	return category(score, factors)
}

// assessResource estimates staffing demand at roughly $150K of contract
// value per employee-year.
func (a *Assessor) assessResource(org *domain.Organization, opp *domain.Opportunity) domain.RiskCategory {
	var factors []string
	score := 0.0

	if org.EmployeeCount != nil && *org.EmployeeCount > 0 && opp.EstimatedValueMax != nil {
		employees := float64(*org.EmployeeCount)
		impliedStaff := opp.EstimatedValueMax.InexactFloat64() / 150000

		if impliedStaff > employees*0.5 {
			factors = append(factors, fmt.Sprintf("May require ~%.0f staff (%d current employees)", impliedStaff, *org.EmployeeCount))
			score += 0.4
		} else if impliedStaff > employees*0.3 {
			factors = append(factors, "Significant staffing effort required")
			score += 0.2
		}
	}

	if oppState := opp.PerformanceState(); oppState != "" {
		if orgState := org.StateCode(); orgState != "" && orgState != oppState {
			factors = append(factors, fmt.Sprintf("Performance in %s (org based in %s)", oppState, orgState))
			score += 0.2
		}
	}

	return category(score, factors)
}

// regulatedSectors maps 3-digit NAICS prefixes to compliance notes.
var regulatedSectors = []struct {
	prefix string
	note   string
}{
	{"541", "Professional services - may require specific certifications"},
	{"336", "Defense manufacturing - ITAR/EAR may apply"},
	{"562", "Environmental - EPA compliance required"},
	{"622", "Healthcare - HIPAA compliance required"},
}

func (a *Assessor) assessCompliance(org *domain.Organization, opp *domain.Opportunity) domain.RiskCategory {
	var factors []string
	score := 0.0

	if opp.ContractingOfficeName != nil {
		office := strings.ToLower(*opp.ContractingOfficeName)
		for _, term := range []string{"defense", "army", "navy", "air force", "dod"} {
			if strings.Contains(office, term) {
				factors = append(factors, "DoD contract - DFARS compliance required")
				score += 0.2
				break
			}
		}
	}

	if oppNAICS := opp.NAICS(); oppNAICS != "" {
		for _, sector := range regulatedSectors {
			if strings.HasPrefix(oppNAICS, sector.prefix) {
				factors = append(factors, sector.note)
				score += 0.15
				break
			}
		}
	}

	if opp.SecurityClearanceRequired != nil && *opp.SecurityClearanceRequired != "" {
		factors = append(factors, "Facility clearance and security protocols required")
		score += 0.2
	}

	return category(score, factors)
}

func (a *Assessor) assessTimeline(opp *domain.Opportunity) domain.RiskCategory {
	var factors []string
	score := 0.0

	if opp.ResponseDeadline != nil {
		days := daysUntil(a.now().UTC(), opp.ResponseDeadline.UTC())
		switch {
		case days < 0:
			factors = append(factors, "Response deadline has passed")
			score = 1.0
		case days < 7:
			factors = append(factors, fmt.Sprintf("Only %d days until deadline - urgent", days))
			score += 0.7
		case days < 14:
			factors = append(factors, fmt.Sprintf("%d days until deadline - tight timeline", days))
			score += 0.4
		case days < 30:
			factors = append(factors, fmt.Sprintf("%d days until deadline - manageable", days))
			score += 0.2
		}
	} else {
		factors = append(factors, "No response deadline specified")
		score += 0.1
	}

	return category(score, factors)
}

// daysUntil counts whole days from now to deadline, flooring toward
// negative infinity so any elapsed deadline reads as negative.
func daysUntil(now, deadline time.Time) int {
	return int(math.Floor(deadline.Sub(now).Hours() / 24))
}

func anyHasPrefix(codes []string, prefix string) bool {
	for _, c := range codes {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// mitigationRule pairs a category gate with factor-substring triggers.
type mitigationRule struct {
	category  *domain.RiskCategory
	threshold float64
	triggers  []trigger
}

type trigger struct {
	substrings  []string
	suggestions []string
}

func mitigations(eligibility, technical, pricing, resource, compliance, timeline domain.RiskCategory) []string {
	ruleSet := []mitigationRule{
		{&eligibility, 0.5, []trigger{
			{[]string{"set-aside"}, []string{"Consider teaming with an eligible prime contractor"}},
			{[]string{"clearance"}, []string{"Initiate facility clearance process if not already in progress"}},
			{[]string{"uei"}, []string{"Complete SAM.gov registration immediately"}},
		}},
		{&technical, 0.4, []trigger{
			{[]string{"naics"}, []string{"Document relevant past performance in adjacent NAICS codes"}},
			{[]string{"capabilities"}, []string{"Update capability statement before submission"}},
		}},
		{&pricing, 0.4, []trigger{
			{[]string{"capacity", "revenue"}, []string{"Consider teaming or subcontracting to share risk"}},
			{[]string{"accounting"}, []string{"Verify DCAA-compliant accounting system is in place"}},
		}},
		{&resource, 0.4, []trigger{
			{[]string{"staff"}, []string{
				"Identify key personnel and confirm availability",
				"Develop recruitment pipeline for required positions",
			}},
			{[]string{"performance in"}, []string{"Consider local subcontractor or satellite office"}},
		}},
		{&compliance, 0.3, []trigger{
			{[]string{"dfars"}, []string{"Review DFARS flowdown requirements with contracts team"}},
			{[]string{"hipaa", "itar"}, []string{"Engage compliance officer for regulatory review"}},
		}},
		{&timeline, 0.5, []trigger{
			{[]string{"urgent", "tight"}, []string{
				"Assign dedicated proposal team immediately",
				"Request extension if allowable under solicitation",
			}},
		}},
	}

	var out []string
	seen := make(map[string]bool)

	for _, rule := range ruleSet {
		if rule.category.Score < rule.threshold {
			continue
		}
		for _, factor := range rule.category.Factors {
			lower := strings.ToLower(factor)
			for _, trig := range rule.triggers {
				if !containsAny(lower, trig.substrings) {
					continue
				}
				for _, s := range trig.suggestions {
					if !seen[s] {
						seen[s] = true
						out = append(out, s)
					}
				}
			}
		}
	}

	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
