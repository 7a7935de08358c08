// Package pricing provides competitive pricing analysis for federal
// opportunities: labor-rate and contract-value benchmarking, a
// recommended price band, and bottom-up should-cost modeling. All
// monetary arithmetic is decimal; floats appear only in confidence
// scores.
package pricing

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/rules"
)

// Standard labor hours per month for FTE costing.
const hoursPerMonth = 173

// Factors records which inputs drove a recommendation.
type Factors struct {
	NAICSCode             string `json:"naics_code"`
	HasGovernmentEstimate bool   `json:"has_government_estimate"`
	BenchmarkAvailable    bool   `json:"benchmark_available"`
	LaborMixProvided      bool   `json:"labor_mix_provided"`
}

// Recommendation is a priced bid band with supporting evidence.
type Recommendation struct {
	OpportunityID       string                        `json:"opportunity_id"`
	RecommendedPriceMin decimal.Decimal               `json:"recommended_price_min"`
	RecommendedPriceMax decimal.Decimal               `json:"recommended_price_max"`
	CompetitivePosition string                        `json:"competitive_position"`
	Confidence          float64                       `json:"confidence"`
	Factors             Factors                       `json:"factors"`
	LaborRates          []rules.LaborRateBenchmark    `json:"labor_rates"`
	Benchmarks          []rules.ContractValueBenchmark `json:"benchmarks"`
	Notes               []string                      `json:"notes"`
	GeneratedAt         time.Time                     `json:"generated_at"`
}

// LaborLine is one labor category's share of a should-cost estimate.
type LaborLine struct {
	FTECount   int             `json:"fte_count"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// ShouldCost is a bottom-up price estimate from labor mix, overhead,
// and profit.
type ShouldCost struct {
	LaborBreakdown map[string]LaborLine `json:"labor_breakdown"`
	DirectLabor    decimal.Decimal      `json:"direct_labor"`
	OverheadCost   decimal.Decimal      `json:"overhead_cost"`
	OverheadRate   float64              `json:"overhead_rate"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	ProfitMargin   float64              `json:"profit_margin"`
	Profit         decimal.Decimal      `json:"profit"`
	TotalPrice     decimal.Decimal      `json:"total_price"`
	DurationMonths int                  `json:"duration_months"`
	PricePerMonth  decimal.Decimal      `json:"price_per_month"`
}

// Service answers pricing questions from the static benchmark tables.
type Service struct {
	now func() time.Time
}

// NewService returns a Service using the wall clock.
func NewService() *Service {
	return &Service{now: time.Now}
}

// NewServiceAt returns a Service with an injected clock.
func NewServiceAt(now func() time.Time) *Service {
	return &Service{now: now}
}

// Recommend produces a price band for an opportunity. laborMix maps
// labor category keys to FTE counts and only affects confidence here;
// use CalculateShouldCost for the full bottom-up estimate.
func (s *Service) Recommend(opp *domain.Opportunity, laborMix map[string]int) Recommendation {
	naicsCode := opp.NAICS()
	benchmark, hasBenchmark := rules.NAICSBenchmark(naicsCode)
	laborRates := relevantLaborRates(opp)

	recMin, recMax := recommendedBand(benchmark, hasBenchmark, opp.EstimatedValueMax)
	position := competitivePosition(recMin, recMax, opp.EstimatedValueMax)

	var benchmarks []rules.ContractValueBenchmark
	if hasBenchmark {
		benchmarks = append(benchmarks, benchmark)
	}

	return Recommendation{
		OpportunityID:       opp.ID.String(),
		RecommendedPriceMin: recMin,
		RecommendedPriceMax: recMax,
		CompetitivePosition: position,
		Confidence:          confidence(benchmark, hasBenchmark, laborMix),
		Factors: Factors{
			NAICSCode:             naicsCode,
			HasGovernmentEstimate: opp.EstimatedValueMax != nil,
			BenchmarkAvailable:    hasBenchmark,
			LaborMixProvided:      laborMix != nil,
		},
		LaborRates:  laborRates,
		Benchmarks:  benchmarks,
		Notes:       pricingNotes(benchmark, hasBenchmark, opp, position),
		GeneratedAt: s.now().UTC(),
	}
}

// ListLaborRates returns benchmarks for the named categories, or all
// categories sorted by key when none are given. Unknown keys are
// skipped.
func (s *Service) ListLaborRates(categories []string) []rules.LaborRateBenchmark {
	if categories == nil {
		all := rules.LaborRates()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]rules.LaborRateBenchmark, 0, len(keys))
		for _, k := range keys {
			out = append(out, all[k])
		}
		return out
	}

	out := make([]rules.LaborRateBenchmark, 0, len(categories))
	for _, cat := range categories {
		if b, ok := rules.LaborRate(cat); ok {
			out = append(out, b)
		}
	}
	return out
}

// ListContractBenchmarks returns benchmarks for the given NAICS codes
// (exact match, then 4-digit prefix fallback), or all rows sorted by
// code when none are given.
func (s *Service) ListContractBenchmarks(naicsCodes []string) []rules.ContractValueBenchmark {
	if naicsCodes == nil {
		all := rules.NAICSBenchmarks()
		codes := make([]string, 0, len(all))
		for c := range all {
			codes = append(codes, c)
		}
		sort.Strings(codes)

		out := make([]rules.ContractValueBenchmark, 0, len(codes))
		for _, c := range codes {
			out = append(out, all[c])
		}
		return out
	}

	out := make([]rules.ContractValueBenchmark, 0, len(naicsCodes))
	for _, code := range naicsCodes {
		if b, ok := rules.NAICSBenchmark(code); ok {
			out = append(out, b)
		}
	}
	return out
}

// CalculateShouldCost builds a bottom-up estimate: direct labor at
// median benchmark rates, overhead at (rate - 1) of direct labor,
// profit on the loaded subtotal. Unknown labor categories are skipped.
func (s *Service) CalculateShouldCost(laborMix map[string]int, durationMonths int, overheadRate, profitMargin float64) ShouldCost {
	totalHours := decimal.NewFromInt(int64(hoursPerMonth * durationMonths))

	breakdown := make(map[string]LaborLine, len(laborMix))
	directLabor := decimal.Zero

	for category, fteCount := range laborMix {
		benchmark, ok := rules.LaborRate(category)
		if !ok {
			continue
		}
		cost := benchmark.MedianRate.Mul(totalHours).Mul(decimal.NewFromInt(int64(fteCount)))
		breakdown[category] = LaborLine{
			FTECount:   fteCount,
			HourlyRate: benchmark.MedianRate,
			TotalCost:  cost,
		}
		directLabor = directLabor.Add(cost)
	}

	overheadCost := directLabor.Mul(decimal.NewFromFloat(overheadRate - 1))
	subtotal := directLabor.Add(overheadCost)
	profit := subtotal.Mul(decimal.NewFromFloat(profitMargin))
	totalPrice := subtotal.Add(profit)

	pricePerMonth := decimal.Zero
	if durationMonths > 0 {
		pricePerMonth = totalPrice.Div(decimal.NewFromInt(int64(durationMonths)))
	}

	return ShouldCost{
		LaborBreakdown: breakdown,
		DirectLabor:    directLabor,
		OverheadCost:   overheadCost,
		OverheadRate:   overheadRate,
		Subtotal:       subtotal,
		ProfitMargin:   profitMargin,
		Profit:         profit,
		TotalPrice:     totalPrice,
		DurationMonths: durationMonths,
		PricePerMonth:  pricePerMonth,
	}
}

// relevantLaborRates picks the labor categories an opportunity's NAICS
// sector and description imply.
func relevantLaborRates(opp *domain.Opportunity) []rules.LaborRateBenchmark {
	naicsCode := opp.NAICS()
	description := strings.ToLower(opp.DescriptionText())

	pick := func(keys ...string) []rules.LaborRateBenchmark {
		out := make([]rules.LaborRateBenchmark, 0, len(keys))
		for _, k := range keys {
			if b, ok := rules.LaborRate(k); ok {
				out = append(out, b)
			}
		}
		return out
	}

	switch {
	case strings.HasPrefix(naicsCode, "5415"):
		relevant := pick("program_manager", "project_manager", "senior_engineer", "engineer", "analyst")
		if strings.Contains(description, "security") || strings.Contains(description, "cyber") {
			relevant = append(relevant, pick("security_engineer")...)
		}
		if strings.Contains(description, "data") || strings.Contains(description, "analytics") {
			relevant = append(relevant, pick("data_scientist")...)
		}
		if strings.Contains(description, "cloud") || strings.Contains(description, "aws") || strings.Contains(description, "azure") {
			relevant = append(relevant, pick("cloud_architect")...)
		}
		return relevant
	case strings.HasPrefix(naicsCode, "5416"), strings.HasPrefix(naicsCode, "5412"):
		return pick("consultant_senior", "consultant", "subject_matter_expert", "project_manager")
	default:
		return pick("project_manager", "consultant", "analyst")
	}
}

func recommendedBand(benchmark rules.ContractValueBenchmark, hasBenchmark bool, govEstimate *decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if govEstimate != nil {
		return govEstimate.Mul(decimal.RequireFromString("0.85")),
			govEstimate.Mul(decimal.RequireFromString("1.00"))
	}
	if hasBenchmark {
		return benchmark.MedianValue.Mul(decimal.RequireFromString("0.8")),
			benchmark.MedianValue.Mul(decimal.RequireFromString("1.2"))
	}
	return decimal.NewFromInt(250000), decimal.NewFromInt(2500000)
}

func competitivePosition(recMin, recMax decimal.Decimal, govEstimate *decimal.Decimal) string {
	if govEstimate == nil || !govEstimate.IsPositive() {
		return "competitive"
	}
	mid := recMin.Add(recMax).Div(decimal.NewFromInt(2))
	ratio := mid.Div(*govEstimate)

	switch {
	case ratio.LessThan(decimal.RequireFromString("0.85")):
		return "aggressive"
	case ratio.LessThan(decimal.RequireFromString("0.95")):
		return "competitive"
	default:
		return "premium"
	}
}

func confidence(benchmark rules.ContractValueBenchmark, hasBenchmark bool, laborMix map[string]int) float64 {
	c := 0.5
	if hasBenchmark {
		c += 0.2
		if benchmark.SampleSize > 1000 {
			c += 0.1
		}
	}
	if laborMix != nil {
		c += 0.15
	}
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func pricingNotes(benchmark rules.ContractValueBenchmark, hasBenchmark bool, opp *domain.Opportunity, position string) []string {
	var notes []string

	if opp.EstimatedValueMax != nil {
		notes = append(notes, "Government estimate: $"+formatMoney(*opp.EstimatedValueMax))
	} else {
		notes = append(notes, "No government estimate available - use benchmark data")
	}

	if hasBenchmark {
		notes = append(notes, "NAICS "+benchmark.NAICSCode+" median award: $"+
			formatMoney(benchmark.MedianValue)+" (n="+strconv.Itoa(benchmark.SampleSize)+")")
	}

	if setAside := opp.SetAside(); setAside != "" {
		notes = append(notes, "Set-aside: "+*opp.SetAsideType+" - price competitiveness may vary")
	}

	if opp.ContractType != nil {
		ct := strings.ToLower(*opp.ContractType)
		if strings.Contains(ct, "ffp") || strings.Contains(ct, "firm fixed") {
			notes = append(notes, "Firm Fixed Price - ensure all costs are captured in pricing")
		} else if strings.Contains(ct, "t&m") || strings.Contains(ct, "time and material") {
			notes = append(notes, "T&M contract - focus on competitive labor rates")
		}
	}

	notes = append(notes, "Competitive position: "+strings.ToUpper(position))
	return notes
}

// formatMoney renders a decimal as a two-place figure with thousands
// separators, e.g. 1234567.5 -> "1,234,567.50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}
