package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords_Basic(t *testing.T) {
	got := Keywords("Cloud migration services for Federal agency")

	assert.Contains(t, got, "cloud")
	assert.Contains(t, got, "migration")
	assert.Contains(t, got, "federal")
	assert.Contains(t, got, "agency")

	// "for" and "services" are stop words.
	assert.NotContains(t, got, "for")
	assert.NotContains(t, got, "services")
}

func TestKeywords_MinLengthThree(t *testing.T) {
	got := Keywords("go to IT ops now")
	assert.NotContains(t, got, "go")
	assert.NotContains(t, got, "it")
	assert.Contains(t, got, "ops")
}

func TestKeywords_StableUnderWhitespace(t *testing.T) {
	a := Keywords("cloud   migration\t\nservices")
	b := Keywords("cloud migration services")
	assert.Equal(t, a, b)
}

func TestKeywords_SplitsOnNonAlpha(t *testing.T) {
	got := Keywords("cyber-security assessment2024")
	assert.Contains(t, got, "cyber")
	assert.Contains(t, got, "assessment")
	assert.NotContains(t, got, "cybersecurity")
}

func TestCapabilityKeywords_MinLengthFour(t *testing.T) {
	got := CapabilityKeywords("ops and data cloud platforms")
	assert.NotContains(t, got, "ops")
	assert.NotContains(t, got, "and")
	assert.Contains(t, got, "data")
	assert.Contains(t, got, "cloud")
	assert.Contains(t, got, "platforms")
}

func TestCapabilityKeywords_DropsCompanyFiller(t *testing.T) {
	got := CapabilityKeywords("our company team has years experience providing cloud")
	assert.NotContains(t, got, "company")
	assert.NotContains(t, got, "team")
	assert.NotContains(t, got, "years")
	assert.NotContains(t, got, "experience")
	assert.Contains(t, got, "cloud")
}

func TestJaccard(t *testing.T) {
	a := Keywords("cloud migration planning")
	b := Keywords("cloud migration execution")

	// intersection {cloud, migration} = 2, union = 4
	assert.InDelta(t, 0.5, Jaccard(a, b), 1e-9)

	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard(a, Keywords("")))
	assert.InDelta(t, 1.0, Jaccard(a, a), 1e-9)
}
