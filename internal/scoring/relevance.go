// Package scoring implements the multi-factor relevance model that
// judges how well an organization fits a procurement opportunity. Five
// component scores are combined through a weighted sum; weights are
// injectable per deployment and must sum to 1.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/naics"
	"github.com/fedscout/fedscout/internal/rules"
	"github.com/fedscout/fedscout/internal/text"
)

// ModelVersion tags persisted scores so recalculation sweeps can tell
// stale rows apart.
const ModelVersion = "1.0.0"

// Component weight keys.
const (
	WeightNAICS           = "naics"
	WeightSemantic        = "semantic"
	WeightGeographic      = "geographic"
	WeightSize            = "size"
	WeightPastPerformance = "past_performance"
)

// DefaultWeights returns the stock component weighting.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		WeightNAICS:           0.25,
		WeightSemantic:        0.30,
		WeightGeographic:      0.15,
		WeightSize:            0.15,
		WeightPastPerformance: 0.15,
	}
}

// Result carries the composite score, its components, and the
// human-readable explanation. All scalars are rounded to 4 decimals.
type Result struct {
	OverallScore         float64
	NAICSScore           float64
	SemanticScore        float64
	GeographicScore      float64
	SizeScore            float64
	PastPerformanceScore float64
	ComponentWeights     map[string]float64
	Explanation          string
}

// Scorer computes relevance between organizations and opportunities.
type Scorer struct {
	weights map[string]float64
}

// NewScorer builds a Scorer. A nil weights map selects DefaultWeights;
// a supplied map must cover exactly the five component keys and sum
// to 1.
func NewScorer(weights map[string]float64) (*Scorer, error) {
	if weights == nil {
		return &Scorer{weights: DefaultWeights()}, nil
	}

	required := []string{WeightNAICS, WeightSemantic, WeightGeographic, WeightSize, WeightPastPerformance}
	if len(weights) != len(required) {
		return nil, fmt.Errorf("scoring: expected %d weight components, got %d", len(required), len(weights))
	}
	sum := 0.0
	for _, key := range required {
		w, ok := weights[key]
		if !ok {
			return nil, fmt.Errorf("scoring: missing weight component %q", key)
		}
		if w < 0 {
			return nil, fmt.Errorf("scoring: weight %q must be non-negative, got %v", key, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("scoring: weights must sum to 1, got %v", sum)
	}

	copied := make(map[string]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	return &Scorer{weights: copied}, nil
}

// Weights returns a copy of the active component weights.
func (s *Scorer) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Score evaluates one (organization, opportunity) pair.
func (s *Scorer) Score(org *domain.Organization, opp *domain.Opportunity) Result {
	naicsScore := s.naicsScore(org, opp)
	semantic := s.semanticScore(org, opp)
	geographic := s.geographicScore(org, opp)
	size := s.sizeScore(org, opp)
	pastPerf := s.pastPerformanceScore(org, opp)

	overall := naicsScore*s.weights[WeightNAICS] +
		semantic*s.weights[WeightSemantic] +
		geographic*s.weights[WeightGeographic] +
		size*s.weights[WeightSize] +
		pastPerf*s.weights[WeightPastPerformance]

	return Result{
		OverallScore:         Round4(overall),
		NAICSScore:           Round4(naicsScore),
		SemanticScore:        Round4(semantic),
		GeographicScore:      Round4(geographic),
		SizeScore:            Round4(size),
		PastPerformanceScore: Round4(pastPerf),
		ComponentWeights:     s.Weights(),
		Explanation:          explain(naicsScore, semantic, geographic, size, overall),
	}
}

func (s *Scorer) naicsScore(org *domain.Organization, opp *domain.Opportunity) float64 {
	return naics.MatchScore(opp.NAICS(), org.NAICSCodes)
}

// semanticScore approximates capability/requirement similarity with
// scaled keyword Jaccard. Raw Jaccard over real narratives typically
// lands in 0.1-0.3, so the score is stretched by 5x and capped.
func (s *Scorer) semanticScore(org *domain.Organization, opp *domain.Opportunity) float64 {
	orgText := org.Capabilities() + " " + org.PastPerformance()
	oppText := opp.Title + " " + opp.DescriptionText()

	if strings.TrimSpace(orgText) == "" || strings.TrimSpace(oppText) == "" {
		return 0.5
	}

	orgKeywords := text.Keywords(orgText)
	oppKeywords := text.Keywords(oppText)
	if len(orgKeywords) == 0 || len(oppKeywords) == 0 {
		return 0.5
	}

	return math.Min(1.0, text.Jaccard(orgKeywords, oppKeywords)*5)
}

func (s *Scorer) geographicScore(org *domain.Organization, opp *domain.Opportunity) float64 {
	orgState := org.StateCode()
	oppState := opp.PerformanceState()

	if orgState == "" || oppState == "" {
		return 0.6
	}
	if orgState == oppState {
		return 1.0
	}
	if rules.StatesAdjacent(orgState, oppState) {
		return 0.8
	}
	// The federal hub draws work from everywhere.
	if rules.InDCMetro(orgState) || rules.InDCMetro(oppState) {
		return 0.7
	}
	return 0.4
}

// sizeScore combines set-aside eligibility with a capacity check of
// contract ceiling against annual revenue. Eligibility failures clamp
// hard; capacity only ever lowers the score.
func (s *Scorer) sizeScore(org *domain.Organization, opp *domain.Opportunity) float64 {
	score := 1.0

	if required := opp.SetAside(); required != "" && len(org.SetAsideTypes) > 0 {
		if rules.KnownSetAside(required) && !rules.SetAsideEligible(required, org.SetAsideTypes) {
			score = 0.2
		}
	}

	if opp.EstimatedValueMax != nil && org.AnnualRevenue != nil && org.AnnualRevenue.IsPositive() {
		ratio := opp.EstimatedValueMax.InexactFloat64() / org.AnnualRevenue.InexactFloat64()

		var capacity float64
		switch {
		case ratio < 0.1:
			capacity = 0.95
		case ratio < 0.5:
			capacity = 1.0
		case ratio < 1.0:
			capacity = 0.8
		case ratio < 2.0:
			capacity = 0.5
		default:
			capacity = 0.2
		}
		score = math.Min(score, capacity)
	}

	return score
}

// contractTypeKeywords maps contract vehicle families to the terms an
// organization's past-performance narrative would mention.
var contractTypeKeywords = []struct {
	family   string
	keywords []string
}{
	{"firm-fixed", []string{"fixed", "ffp"}},
	{"time-and-materials", []string{"time", "materials", "t&m"}},
	{"cost-plus", []string{"cost", "plus", "cpff", "cpaf"}},
	{"idiq", []string{"idiq", "indefinite", "delivery"}},
}

// pastPerformanceScore proxies past-performance relevance through
// narrative keyword checks against the opportunity's NAICS description,
// contracting office, and contract vehicle.
func (s *Scorer) pastPerformanceScore(org *domain.Organization, opp *domain.Opportunity) float64 {
	summary := strings.ToLower(org.PastPerformance())
	if strings.TrimSpace(summary) == "" {
		return 0.5
	}

	indicators := 0
	checks := 0

	if opp.NAICS() != "" {
		checks++
		desc := ""
		if opp.NAICSDescription != nil {
			desc = strings.ToLower(*opp.NAICSDescription)
		}
		if anyWordIn(summary, strings.Fields(desc), 3) {
			indicators++
		}
	}

	if opp.ContractingOfficeName != nil && *opp.ContractingOfficeName != "" {
		checks++
		office := strings.ToLower(*opp.ContractingOfficeName)
		if anyWordIn(summary, strings.Fields(office), 2) {
			indicators++
		}
	}

	if opp.ContractType != nil && *opp.ContractType != "" {
		checks++
		ct := strings.ToLower(*opp.ContractType)
		for _, family := range contractTypeKeywords {
			if strings.Contains(family.family, ct) {
				if anyWordIn(summary, family.keywords, len(family.keywords)) {
					indicators++
				}
				break
			}
		}
	}

	if checks == 0 {
		return 0.6
	}
	return 0.4 + 0.6*float64(indicators)/float64(checks)
}

// anyWordIn reports whether any of the first limit words appears as a
// substring of haystack.
func anyWordIn(haystack string, words []string, limit int) bool {
	if len(words) > limit {
		words = words[:limit]
	}
	for _, w := range words {
		if w != "" && strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

func explain(naicsScore, semantic, geographic, size, overall float64) string {
	var parts []string

	switch {
	case overall >= 0.8:
		parts = append(parts, "Strong alignment detected.")
	case overall >= 0.6:
		parts = append(parts, "Moderate alignment with some gaps.")
	case overall >= 0.4:
		parts = append(parts, "Limited alignment - review carefully.")
	default:
		parts = append(parts, "Weak alignment - likely not a good fit.")
	}

	var strengths, concerns []string

	if naicsScore >= 0.75 {
		strengths = append(strengths, fmt.Sprintf("NAICS match (%s)", pct(naicsScore)))
	} else if naicsScore < 0.5 {
		concerns = append(concerns, fmt.Sprintf("NAICS mismatch (%s)", pct(naicsScore)))
	}

	if semantic >= 0.7 {
		strengths = append(strengths, fmt.Sprintf("capabilities align well (%s)", pct(semantic)))
	} else if semantic < 0.4 {
		concerns = append(concerns, fmt.Sprintf("capabilities gap (%s)", pct(semantic)))
	}

	if geographic >= 0.8 {
		strengths = append(strengths, "good geographic fit")
	} else if geographic < 0.5 {
		concerns = append(concerns, "geographic distance")
	}

	if size >= 0.9 {
		strengths = append(strengths, "appropriate size/eligibility")
	} else if size < 0.5 {
		concerns = append(concerns, "size/eligibility concerns")
	}

	if len(strengths) > 0 {
		parts = append(parts, fmt.Sprintf("Strengths: %s.", strings.Join(strengths, ", ")))
	}
	if len(concerns) > 0 {
		parts = append(parts, fmt.Sprintf("Concerns: %s.", strings.Join(concerns, ", ")))
	}

	return strings.Join(parts, " ")
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Round4 rounds a score to 4 decimal places, the precision stored and
// served everywhere.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
