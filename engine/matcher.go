package engine

import (
	"strings"
)

// ============================================================================
// CROSS-DOMAIN MATCHER
// ============================================================================
// Rainfall is reported per subdivision/state, production per district/state,
// and no mapping table between the two exists. Two locations match when
// either contains the other, or a word of one appears in the other. This is
// best-effort: one rainfall location may pair with many production entries.
// ============================================================================

// minTokenLen ignores connective tokens such as "&" or "of" in token matching.
const minTokenLen = 3

// MatchedPair links a rainfall statistic to a production statistic.
type MatchedPair struct {
	PrecipitationKey string            `json:"precipitationKey"`
	Precipitation    PrecipitationStat `json:"precipitation"`
	Production       ProductionStat    `json:"production"`
}

// Match returns every (rainfall, production) pair whose locations match,
// ordered by rainfall insertion order then production insertion order.
func Match(precip []PrecipitationStat, prod []ProductionStat) []MatchedPair {
	var pairs []MatchedPair
	for _, p := range precip {
		for _, c := range prod {
			if LocationsMatch(p.Location, c.Location) {
				pairs = append(pairs, MatchedPair{PrecipitationKey: p.Key, Precipitation: p, Production: c})
			}
		}
	}
	return pairs
}

// LocationsMatch applies bidirectional case-insensitive containment, then
// token containment in either direction.
func LocationsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return tokenIn(a, b) || tokenIn(b, a)
}

func tokenIn(from, in string) bool {
	for _, tok := range strings.Fields(from) {
		if len(tok) >= minTokenLen && strings.Contains(in, tok) {
			return true
		}
	}
	return false
}
