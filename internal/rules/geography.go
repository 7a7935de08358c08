package rules

// stateAdjacency lists neighboring states for geographic proximity
// scoring. Adjacency is checked in both directions, so a pair only needs
// to appear under one key.
var stateAdjacency = map[string][]string{
	"VA": {"DC", "MD", "WV", "NC", "TN", "KY"},
	"MD": {"DC", "VA", "WV", "PA", "DE"},
	"DC": {"VA", "MD"},
	"CA": {"OR", "NV", "AZ"},
	"TX": {"NM", "OK", "AR", "LA"},
	"FL": {"GA", "AL"},
	"NY": {"NJ", "CT", "PA", "VT", "MA"},
	"IL": {"WI", "IN", "MO", "IA", "KY"},
}

// dcMetro is the federal-hub triangle, treated as mutually adjacent.
var dcMetro = map[string]bool{"DC": true, "VA": true, "MD": true}

// StatesAdjacent reports whether a and b neighbor each other, checking
// the adjacency table in both directions.
func StatesAdjacent(a, b string) bool {
	for _, n := range stateAdjacency[a] {
		if n == b {
			return true
		}
	}
	for _, n := range stateAdjacency[b] {
		if n == a {
			return true
		}
	}
	return false
}

// InDCMetro reports whether state is part of the DC/VA/MD federal hub.
func InDCMetro(state string) bool {
	return dcMetro[state]
}
