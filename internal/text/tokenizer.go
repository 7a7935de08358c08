// Package text provides the keyword tokenizer shared by the relevance
// and win-probability scorers.
package text

import "strings"

// Stop-word sets differ between the two scorers: relevance drops generic
// procurement boilerplate, win-probability additionally drops company
// self-description filler.
var relevanceStopWords = wordSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "can",
	"had", "her", "was", "one", "our", "out", "has", "have", "been",
	"will", "with", "this", "that", "from", "they", "which", "their",
	"would", "there", "could", "other", "into", "more", "some", "such",
	"than", "them", "then", "these", "only", "over", "also", "after",
	"services", "service", "shall", "must", "may", "contractor",
)

var capabilityStopWords = wordSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "can",
	"had", "her", "was", "one", "our", "out", "has", "have", "been",
	"will", "with", "this", "that", "from", "they", "which", "their",
	"would", "there", "could", "other", "into", "more", "some", "such",
	"than", "them", "then", "these", "only", "over", "also", "after",
	"services", "service", "shall", "must", "provide", "including",
	"company", "organization", "team", "experience", "years",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Keywords lowercases s, extracts maximal alphabetic runs of length >= 3,
// and drops the relevance stop-word set.
func Keywords(s string) map[string]struct{} {
	return tokenize(s, 3, relevanceStopWords)
}

// CapabilityKeywords extracts alphabetic runs of length >= 4 with the
// capability stop-word set, for keyword matching against opportunity
// descriptions.
func CapabilityKeywords(s string) map[string]struct{} {
	return tokenize(s, 4, capabilityStopWords)
}

func tokenize(s string, minLen int, stop map[string]struct{}) map[string]struct{} {
	s = strings.ToLower(s)
	tokens := make(map[string]struct{})

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if end-start >= minLen {
			word := s[start:end]
			if _, skip := stop[word]; !skip {
				tokens[word] = struct{}{}
			}
		}
		start = -1
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))

	return tokens
}

// Jaccard computes |a∩b| / |a∪b|. Empty union yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
