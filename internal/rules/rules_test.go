package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAsideEligible_SmallBusinessAcceptsAllSocioeconomic(t *testing.T) {
	for _, cert := range []string{"SB", "SDB", "8A", "WOSB", "EDWOSB", "VOSB", "SDVOSB", "HUBZONE"} {
		assert.True(t, SetAsideEligible("SB", []string{cert}),
			"%s certification should satisfy an SB set-aside", cert)
	}
}

func TestSetAsideEligible_InverseDoesNotHold(t *testing.T) {
	// SB alone satisfies none of the socioeconomic restrictions.
	for _, required := range []string{"8A", "WOSB", "EDWOSB", "VOSB", "SDVOSB", "HUBZONE", "SDB"} {
		assert.False(t, SetAsideEligible(required, []string{"SB"}),
			"SB-only org must not satisfy a %s set-aside", required)
	}
}

func TestSetAsideEligible_Lattice(t *testing.T) {
	cases := []struct {
		required string
		have     string
		want     bool
	}{
		{"WOSB", "EDWOSB", true},
		{"EDWOSB", "WOSB", false},
		{"VOSB", "SDVOSB", true},
		{"SDVOSB", "VOSB", false},
		{"SDB", "8A", true},
		{"8A", "SDB", false},
		{"HUBZONE", "HUBZONE", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SetAsideEligible(tc.required, []string{tc.have}),
			"required=%s have=%s", tc.required, tc.have)
	}
}

func TestSetAsideEligible_OpenCompetition(t *testing.T) {
	assert.True(t, SetAsideEligible("", nil))
	assert.True(t, SetAsideEligible("  ", []string{}))
}

func TestSetAsideEligible_CaseInsensitive(t *testing.T) {
	assert.True(t, SetAsideEligible("sb", []string{"hubzone"}))
}

func TestStatesAdjacent_Symmetric(t *testing.T) {
	// PA appears only under MD's list; both directions must match.
	assert.True(t, StatesAdjacent("MD", "PA"))
	assert.True(t, StatesAdjacent("PA", "MD"))
	assert.False(t, StatesAdjacent("CA", "FL"))
}

func TestDCMetroTriangle(t *testing.T) {
	for _, s := range []string{"DC", "VA", "MD"} {
		assert.True(t, InDCMetro(s))
	}
	assert.False(t, InDCMetro("NC"))
}

func TestLookupCountry(t *testing.T) {
	de, ok := LookupCountry("de")
	require.True(t, ok)
	assert.Equal(t, "Germany", de.Name)
	assert.True(t, de.Designated)

	cn, ok := LookupCountry("CN")
	require.True(t, ok)
	assert.False(t, cn.Designated)

	_, ok = LookupCountry("XX")
	assert.False(t, ok)
}

func TestDesignatedCountriesSortedAndComplete(t *testing.T) {
	entries := DesignatedCountries()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Code, entries[i].Code)
	}
	for _, e := range entries {
		assert.True(t, TAADesignated(e.Code), e.Code)
	}
}

func TestSanctionsOverrideDesignation(t *testing.T) {
	for _, code := range []string{"KP", "IR", "CU", "SY", "BY", "RU"} {
		assert.True(t, CountrySanctioned(code), code)
		assert.False(t, TAADesignated(code), code)
	}
	assert.False(t, CountrySanctioned("CN"))
}

func TestProhibitedEntityTables(t *testing.T) {
	entities := ProhibitedEntities()
	for _, key := range []string{"huawei", "zte", "hytera", "hikvision", "dahua"} {
		assert.Contains(t, entities, key)
	}

	brands := ProhibitedBrands()
	assert.Equal(t, "huawei", brands["honor"])
	assert.Equal(t, RequiresReview, brands["uniview"])
}

func TestLaborRateRowsWellFormed(t *testing.T) {
	for key, b := range LaborRates() {
		assert.True(t, b.MinRate.IsPositive(), "%s min", key)
		assert.True(t, b.MaxRate.GreaterThan(b.MinRate), "%s max>min", key)
		assert.True(t, b.MedianRate.GreaterThanOrEqual(b.MinRate), "%s median>=min", key)
		assert.True(t, b.MedianRate.LessThanOrEqual(b.MaxRate), "%s median<=max", key)
		assert.Greater(t, b.SampleSize, 0, "%s sample", key)
	}
}

// Every benchmark row must carry a positive AverageValue; this guards
// against the upstream data error where one row shipped with its average
// under the wrong field name.
func TestNAICSBenchmarkRowsWellFormed(t *testing.T) {
	for code, b := range NAICSBenchmarks() {
		assert.Equal(t, code, b.NAICSCode)
		assert.True(t, b.AverageValue.IsPositive(), "%s average_value", code)
		assert.True(t, b.MedianValue.IsPositive(), "%s median_value", code)
		assert.True(t, b.MaxValue.GreaterThan(b.MinValue), "%s max>min", code)
	}
}

func TestNAICSBenchmarkPrefixFallback(t *testing.T) {
	exact, ok := NAICSBenchmark("541512")
	require.True(t, ok)
	assert.Equal(t, "541512", exact.NAICSCode)

	// 541513 has no row; falls back to the lowest 5415-prefixed code.
	fallback, ok := NAICSBenchmark("541513")
	require.True(t, ok)
	assert.Equal(t, "541511", fallback.NAICSCode)

	_, ok = NAICSBenchmark("722511")
	assert.False(t, ok)

	_, ok = NAICSBenchmark("54")
	assert.False(t, ok)
}
