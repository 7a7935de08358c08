// Package naics scores taxonomy alignment between an opportunity's NAICS
// code and an organization's code set. NAICS is hierarchical by prefix,
// so match quality is the longest shared prefix over any candidate.
package naics

import "strings"

// NeutralScore is returned when either side carries no NAICS data.
const NeutralScore = 0.5

// MatchScore returns the alignment score between an opportunity code and
// a set of organization codes:
//
//	prefix >= 6 digits: 1.0
//	5 digits:           0.9
//	4 digits:           0.75
//	3 digits:           0.5
//	2 digits:           0.25
//	otherwise:          0.0
//
// Missing data on either side yields NeutralScore.
func MatchScore(oppCode string, orgCodes []string) float64 {
	oppCode = strings.TrimSpace(oppCode)
	if oppCode == "" || len(orgCodes) == 0 {
		return NeutralScore
	}

	best := 0.0
	for _, orgCode := range orgCodes {
		score := prefixScore(oppCode, strings.TrimSpace(orgCode))
		if score > best {
			best = score
		}
		if best == 1.0 {
			break
		}
	}
	return best
}

// PrefixLength returns the length of the common prefix of a and b.
func PrefixLength(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func prefixScore(a, b string) float64 {
	switch l := PrefixLength(a, b); {
	case l >= 6:
		return 1.0
	case l == 5:
		return 0.9
	case l == 4:
		return 0.75
	case l == 3:
		return 0.5
	case l == 2:
		return 0.25
	default:
		return 0.0
	}
}
