package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedscout/fedscout/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testAssessor() *Assessor {
	return NewAssessorAt(func() time.Time { return testNow })
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

func baseOrg() *domain.Organization {
	uei := "ABC123DEF456"
	narrative := "cloud and infrastructure engineering"
	return &domain.Organization{
		Name:                  "Acme Federal",
		UEI:                   &uei,
		NAICSCodes:            []string{"541512"},
		SetAsideTypes:         []string{"SB"},
		State:                 strPtr("VA"),
		CapabilitiesNarrative: &narrative,
	}
}

func baseOpp() *domain.Opportunity {
	return &domain.Opportunity{
		Title:                   "Cloud Support",
		NAICSCode:               strPtr("541512"),
		PlaceOfPerformanceState: strPtr("VA"),
		ResponseDeadline:        timePtr(testNow.AddDate(0, 2, 0)),
	}
}

func TestAssess_CleanPairIsLowRisk(t *testing.T) {
	r := testAssessor().Assess(baseOrg(), baseOpp())

	assert.Equal(t, domain.RiskLow, r.OverallRiskLevel)
	assert.Equal(t, 0.0, r.Eligibility.Score)
	assert.Equal(t, 0.0, r.Technical.Score)
	assert.Empty(t, r.MitigationSuggestions)
}

func TestAssess_OverallIsWeightedSum(t *testing.T) {
	org := baseOrg()
	org.UEI = nil
	r := testAssessor().Assess(org, baseOpp())

	want := r.Eligibility.Score*0.25 + r.Technical.Score*0.20 +
		r.Pricing.Score*0.15 + r.Resource.Score*0.15 +
		r.Compliance.Score*0.15 + r.Timeline.Score*0.10
	assert.InDelta(t, want, r.OverallRiskScore, 1e-4)
}

func TestEligibility_IneligibleSetAside(t *testing.T) {
	org := baseOrg() // SB only
	opp := baseOpp()
	opp.SetAsideType = strPtr("8A")

	r := testAssessor().Assess(org, opp)

	require.NotEmpty(t, r.Eligibility.Factors)
	assert.Contains(t, r.Eligibility.Factors[0], "Not eligible for 8A set-aside")
	assert.InDelta(t, 0.8, r.Eligibility.Score, 1e-9)
	assert.Equal(t, domain.RiskCritical, r.Eligibility.Level)
	assert.Contains(t, r.MitigationSuggestions, "Consider teaming with an eligible prime contractor")
}

func TestEligibility_ClearanceAndRegistrationStack(t *testing.T) {
	org := baseOrg()
	org.UEI = nil
	opp := baseOpp()
	opp.SecurityClearanceRequired = strPtr("Top Secret")

	r := testAssessor().Assess(org, opp)

	assert.InDelta(t, 0.7, r.Eligibility.Score, 1e-9)
	assert.Equal(t, domain.RiskHigh, r.Eligibility.Level)
	assert.Contains(t, r.MitigationSuggestions, "Complete SAM.gov registration immediately")
	assert.Contains(t, r.MitigationSuggestions, "Initiate facility clearance process if not already in progress")
}

func TestTechnical_NAICSDistance(t *testing.T) {
	a := testAssessor()

	// Same 2-digit sector, different 4-digit group: adjacent.
	opp := baseOpp()
	opp.NAICSCode = strPtr("541611")
	r := a.Assess(baseOrg(), opp)
	assert.InDelta(t, 0.2, r.Technical.Score, 1e-9)
	assert.Contains(t, r.Technical.Factors[0], "adjacent to core codes")

	// Different sector entirely.
	opp.NAICSCode = strPtr("336411")
	r = a.Assess(baseOrg(), opp)
	assert.InDelta(t, 0.5, r.Technical.Score, 1e-9)
	assert.Contains(t, r.Technical.Factors[0], "outside core competencies")
}

func TestPricing_ValueRatioAndVehicle(t *testing.T) {
	org := baseOrg()
	org.AnnualRevenue = decPtr("1000000")
	opp := baseOpp()
	opp.EstimatedValueMax = decPtr("2500000")
	opp.ContractType = strPtr("CPFF")

	r := testAssessor().Assess(org, opp)

	assert.InDelta(t, 0.8, r.Pricing.Score, 1e-9)
	assert.Contains(t, r.Pricing.Factors[0], "may exceed capacity")
	assert.Contains(t, r.Pricing.Factors[1], "accounting systems")
	assert.Contains(t, r.MitigationSuggestions, "Verify DCAA-compliant accounting system is in place")
}

func TestResource_ImpliedStaffing(t *testing.T) {
	org := baseOrg()
	ten := 10
	org.EmployeeCount = &ten
	opp := baseOpp()
	opp.EstimatedValueMax = decPtr("1500000") // ~10 implied staff vs 10 employees

	r := testAssessor().Assess(org, opp)

	assert.InDelta(t, 0.4, r.Resource.Score, 1e-9)
	assert.Contains(t, r.Resource.Factors[0], "May require ~10 staff")
}

func TestCompliance_RegulatedSectorAndDoD(t *testing.T) {
	opp := baseOpp()
	opp.ContractingOfficeName = strPtr("Department of the Navy")

	r := testAssessor().Assess(baseOrg(), opp)

	// 0.2 DoD + 0.15 professional-services sector.
	assert.InDelta(t, 0.35, r.Compliance.Score, 1e-9)
	assert.Contains(t, r.Compliance.Factors, "DoD contract - DFARS compliance required")
	assert.Contains(t, r.MitigationSuggestions, "Review DFARS flowdown requirements with contracts team")
}

func TestTimeline_Bands(t *testing.T) {
	a := testAssessor()

	cases := []struct {
		deadline time.Time
		score    float64
		level    domain.RiskLevel
	}{
		{testNow.AddDate(0, 0, -1), 1.0, domain.RiskCritical},
		{testNow.AddDate(0, 0, 3), 0.7, domain.RiskHigh},
		{testNow.AddDate(0, 0, 10), 0.4, domain.RiskMedium},
		{testNow.AddDate(0, 0, 20), 0.2, domain.RiskLow},
		{testNow.AddDate(0, 0, 60), 0.0, domain.RiskLow},
	}
	for _, tc := range cases {
		opp := baseOpp()
		opp.ResponseDeadline = timePtr(tc.deadline)
		r := a.Assess(baseOrg(), opp)
		assert.InDelta(t, tc.score, r.Timeline.Score, 1e-9, "deadline=%s", tc.deadline)
		assert.Equal(t, tc.level, r.Timeline.Level, "deadline=%s", tc.deadline)
	}
}

func TestTimeline_DeadlinePassed(t *testing.T) {
	opp := baseOpp()
	opp.ResponseDeadline = timePtr(testNow.AddDate(0, 0, -1))

	r := testAssessor().Assess(baseOrg(), opp)

	assert.Equal(t, 1.0, r.Timeline.Score)
	assert.Equal(t, domain.RiskCritical, r.Timeline.Level)
	assert.Contains(t, r.Timeline.Factors, "Response deadline has passed")
}

func TestTimeline_MissingDeadline(t *testing.T) {
	opp := baseOpp()
	opp.ResponseDeadline = nil

	r := testAssessor().Assess(baseOrg(), opp)

	assert.InDelta(t, 0.1, r.Timeline.Score, 1e-9)
	assert.Contains(t, r.Timeline.Factors, "No response deadline specified")
}

func TestMitigations_DeduplicatedAndCapped(t *testing.T) {
	org := &domain.Organization{Name: "Empty Org"} // no UEI, no narrative, no certs
	five := 5
	org.EmployeeCount = &five
	opp := baseOpp()
	opp.SetAsideType = strPtr("SDVOSB")
	opp.SecurityClearanceRequired = strPtr("TS/SCI")
	opp.ContractType = strPtr("cost-plus-fixed-fee")
	opp.ContractingOfficeName = strPtr("US Army Contracting Command")
	opp.EstimatedValueMax = decPtr("5000000")
	opp.ResponseDeadline = timePtr(testNow.AddDate(0, 0, 3))

	r := testAssessor().Assess(org, opp)

	assert.LessOrEqual(t, len(r.MitigationSuggestions), 10)
	seen := make(map[string]int)
	for _, m := range r.MitigationSuggestions {
		seen[m]++
	}
	for m, n := range seen {
		assert.Equal(t, 1, n, "duplicate suggestion: %s", m)
	}
	assert.Equal(t, domain.RiskCritical, r.Eligibility.Level)
}

func TestLevelBands(t *testing.T) {
	assert.Equal(t, domain.RiskLow, Level(0.25))
	assert.Equal(t, domain.RiskMedium, Level(0.26))
	assert.Equal(t, domain.RiskMedium, Level(0.5))
	assert.Equal(t, domain.RiskHigh, Level(0.75))
	assert.Equal(t, domain.RiskCritical, Level(0.76))
}
