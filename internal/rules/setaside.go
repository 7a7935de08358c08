// Package rules holds the static domain tables the scoring engines
// consult: set-aside eligibility, state adjacency, TAA country
// designations, Section 889 prohibited entities, and pricing benchmarks.
// All tables are immutable after process init.
package rules

import "strings"

// setAsideEligible maps an opportunity's required set-aside to the
// organization certifications that satisfy it. A missing key means only
// the designation itself qualifies.
var setAsideEligible = map[string][]string{
	"SB":      {"SB", "SDB", "8A", "WOSB", "EDWOSB", "HUBZONE", "VOSB", "SDVOSB"},
	"SDB":     {"SDB", "8A"},
	"8A":      {"8A", "8(A)"},
	"8(A)":    {"8A", "8(A)"},
	"WOSB":    {"WOSB", "EDWOSB"},
	"EDWOSB":  {"EDWOSB"},
	"VOSB":    {"VOSB", "SDVOSB"},
	"SDVOSB":  {"SDVOSB"},
	"HUBZONE": {"HUBZONE"},
}

// SetAsideEligible reports whether an organization holding certifications
// orgTypes may bid on an opportunity restricted to required. An empty
// required designation means full and open competition.
func SetAsideEligible(required string, orgTypes []string) bool {
	required = strings.ToUpper(strings.TrimSpace(required))
	if required == "" {
		return true
	}

	eligible, ok := setAsideEligible[required]
	if !ok {
		eligible = []string{required}
	}

	for _, have := range orgTypes {
		have = strings.ToUpper(strings.TrimSpace(have))
		for _, want := range eligible {
			if have == want {
				return true
			}
		}
	}
	return false
}

// EligibleCertifications returns the certifications satisfying required,
// for explanation output.
func EligibleCertifications(required string) []string {
	required = strings.ToUpper(strings.TrimSpace(required))
	if eligible, ok := setAsideEligible[required]; ok {
		out := make([]string, len(eligible))
		copy(out, eligible)
		return out
	}
	return []string{required}
}

// KnownSetAside reports whether t names a set-aside designation in the
// eligibility lattice.
func KnownSetAside(t string) bool {
	_, ok := setAsideEligible[strings.ToUpper(strings.TrimSpace(t))]
	return ok
}
