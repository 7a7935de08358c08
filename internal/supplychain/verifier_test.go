package supplychain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier() *Verifier {
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return NewVerifierAt(func() time.Time { return fixed })
}

func TestVerifySupplier_ProhibitedEntityAndSanctionedCountry(t *testing.T) {
	v := testVerifier()

	r := v.VerifySupplier("Huawei Technologies", "", "CN", nil)

	assert.Equal(t, StatusProhibited, r.Section889.Status)
	require.NotNil(t, r.TAA)
	assert.Equal(t, StatusNonCompliant, r.TAA.Status)
	assert.Equal(t, "critical", r.RiskLevel)
	assert.Equal(t, 1.0, r.OverallRiskScore)
	assert.Contains(t, r.Recommendations, "DO NOT PROCEED with this supplier - Section 889 violation")
	assert.Contains(t, r.RiskFactors, "Section 889 PROHIBITED entity match")
	assert.Contains(t, r.RiskFactors, "Non-TAA country: China")
}

func TestVerifySupplier_CleanSupplier(t *testing.T) {
	v := testVerifier()

	r := v.VerifySupplier("Acme Office Furniture", "SUP-00001", "US", nil)

	assert.Equal(t, StatusCompliant, r.Section889.Status)
	require.NotNil(t, r.TAA)
	assert.Equal(t, StatusCompliant, r.TAA.Status)
	assert.Equal(t, 0.0, r.OverallRiskScore)
	assert.Equal(t, "low", r.RiskLevel)
	assert.Contains(t, r.Recommendations, "Supplier passes initial compliance screening")
	assert.Equal(t, "SUP-00001", r.SupplierID)
}

func TestVerifySupplier_DerivedIDIsStable(t *testing.T) {
	v := testVerifier()

	a := v.VerifySupplier("Acme Office Furniture", "", "US", nil)
	b := v.VerifySupplier("Acme Office Furniture", "", "US", nil)

	assert.Equal(t, a.SupplierID, b.SupplierID)
	assert.Regexp(t, `^SUP-\d{5}$`, a.SupplierID)
}

func TestCheckSection889_BrandMapping(t *testing.T) {
	v := testVerifier()

	r := v.CheckSection889("Honor Devices USA", nil)
	assert.Equal(t, StatusProhibited, r.Status)
	require.NotEmpty(t, r.ProhibitedEntitiesMatched)
	assert.Contains(t, r.ProhibitedEntitiesMatched[0], "via brand: honor")

	// Uniview is flagged for review, not prohibited.
	r = v.CheckSection889("Uniview Distributors", nil)
	assert.Equal(t, StatusRequiresReview, r.Status)
	assert.Contains(t, r.RiskIndicators[0], "requires additional review")
}

func TestCheckSection889_ComponentFlipsVerdict(t *testing.T) {
	v := testVerifier()

	clean := v.CheckSection889("Federal Integrators LLC", nil)
	assert.Equal(t, StatusCompliant, clean.Status)

	flagged := v.CheckSection889("Federal Integrators LLC", []Component{
		{Name: "PTZ Dome", Manufacturer: "Hikvision"},
	})
	assert.Equal(t, StatusProhibited, flagged.Status)
	assert.Contains(t, flagged.ProhibitedEntitiesMatched[0], "component: PTZ Dome")
}

func TestCheckSection889_CategoryIndicators(t *testing.T) {
	v := testVerifier()

	r := v.CheckSection889("Metro Surveillance Supply", nil)

	assert.Equal(t, StatusRequiresReview, r.Status)
	assert.Contains(t, r.RiskIndicators[0], "Video surveillance equipment")
	assert.Equal(t, "Additional verification required before procurement", r.Recommendation)

	// Two keywords mapping to the same advisory yield one indicator.
	r = v.CheckSection889("Acme Security Camera Wholesale", nil)
	assert.Len(t, r.RiskIndicators, 1)
}

func TestCheckTAA_SanctionedCountry(t *testing.T) {
	r := testVerifier().CheckTAA("KP")

	assert.Equal(t, StatusProhibited, r.Status)
	assert.True(t, r.IsProhibited)
	assert.False(t, r.IsDesignated)
	assert.Equal(t, "North Korea", r.CountryName)
	assert.Contains(t, r.Notes, "sanctions")
}

func TestCheckTAA_Verdicts(t *testing.T) {
	v := testVerifier()

	de := v.CheckTAA("de")
	assert.Equal(t, StatusCompliant, de.Status)
	assert.True(t, de.IsDesignated)

	cn := v.CheckTAA("CN")
	assert.Equal(t, StatusNonCompliant, cn.Status)
	assert.False(t, cn.IsDesignated)
	assert.False(t, cn.IsProhibited)

	xx := v.CheckTAA("XX")
	assert.Equal(t, StatusUnknown, xx.Status)
	assert.Equal(t, "Unknown", xx.CountryName)
}

func TestBatchCheckTAA(t *testing.T) {
	results := testVerifier().BatchCheckTAA([]string{"US", "CN", "KP"})

	require.Len(t, results, 3)
	assert.Equal(t, StatusCompliant, results["US"].Status)
	assert.Equal(t, StatusNonCompliant, results["CN"].Status)
	assert.Equal(t, StatusProhibited, results["KP"].Status)
}

func TestRiskComposition_Bands(t *testing.T) {
	v := testVerifier()

	// Review indicator without country: 0.4 + 0.2 = 0.6 high.
	r := v.VerifySupplier("Metro Surveillance Supply", "", "", nil)
	assert.InDelta(t, 0.6, r.OverallRiskScore, 1e-9)
	assert.Equal(t, "high", r.RiskLevel)
	assert.Contains(t, r.RiskFactors, "Country of origin not provided")
	assert.Contains(t, r.Recommendations, "Consult with contracting officer before proceeding")

	// Unknown country alone: 0.3 medium.
	r = v.VerifySupplier("Plain Goods Co", "", "XX", nil)
	assert.InDelta(t, 0.3, r.OverallRiskScore, 1e-9)
	assert.Equal(t, "medium", r.RiskLevel)

	// Missing country alone: 0.2 low.
	r = v.VerifySupplier("Plain Goods Co", "", "", nil)
	assert.InDelta(t, 0.2, r.OverallRiskScore, 1e-9)
	assert.Equal(t, "low", r.RiskLevel)
}

// Adding a prohibited component to a previously compliant supplier must
// flip the overall verdict to prohibited, never soften it.
func TestVerdictMonotonicity(t *testing.T) {
	v := testVerifier()

	before := v.VerifySupplier("Plain Goods Co", "", "US", nil)
	assert.Equal(t, StatusCompliant, before.Section889.Status)
	assert.Equal(t, "low", before.RiskLevel)

	after := v.VerifySupplier("Plain Goods Co", "", "US", []Component{
		{Name: "Router", Manufacturer: "ZTE Corporation"},
	})
	assert.Equal(t, StatusProhibited, after.Section889.Status)
	assert.Equal(t, "critical", after.RiskLevel)
	assert.GreaterOrEqual(t, after.OverallRiskScore, before.OverallRiskScore)
}
