package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// CONFIDENCE SCORER
// ============================================================================
// A heuristic trust indicator, not a statistical confidence interval.
//
//   completeness  up to 40  share of named locations found (35 flat for "all")
//   volume        20/15/10  total observations >1000 / >100 / else
//   quality       20/15/10  mean per-source tier from null ratio
//   diversity     10 / 5    ≥2 distinct sources / otherwise
//   cross-domain  10        both domains contributed
//
// The sum is truncated to an integer and capped at 99.
// ============================================================================

// MaxConfidence is the score ceiling.
const MaxConfidence = 99

// Factor is one named contribution to the score.
type Factor struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Detail string  `json:"detail"`
}

// Confidence is the bounded score with its breakdown.
type Confidence struct {
	Score   int      `json:"score"`
	Factors []Factor `json:"factors"`
}

// Descriptions renders each factor as "name: detail (+points)".
func (c Confidence) Descriptions() []string {
	out := make([]string, len(c.Factors))
	for i, f := range c.Factors {
		out[i] = fmt.Sprintf("%s: %s (+%.0f)", f.Name, f.Detail, f.Points)
	}
	return out
}

// Score computes the confidence of an answer built from precip and prod.
func Score(precip []PrecipitationStat, prod []ProductionStat, q StructuredQuery, descriptors []schema.DatasetDescriptor) Confidence {
	var factors []Factor

	// completeness
	if requested := q.SpecificLocations(); len(requested) > 0 {
		found := foundLocations(requested, precip, prod)
		factors = append(factors, Factor{
			Name:   "completeness",
			Points: 40 * float64(found) / float64(len(requested)),
			Detail: fmt.Sprintf("%d of %d requested locations found", found, len(requested)),
		})
	} else {
		factors = append(factors, Factor{Name: "completeness", Points: 35, Detail: "all-locations query"})
	}

	// volume
	observations := 0
	for _, s := range precip {
		observations += s.Observations
	}
	for _, s := range prod {
		observations += s.Observations
	}
	volume := 10.0
	switch {
	case observations > 1000:
		volume = 20
	case observations > 100:
		volume = 15
	}
	factors = append(factors, Factor{Name: "volume", Points: volume, Detail: fmt.Sprintf("%d observations", observations)})

	// quality + diversity
	sources := usedSources(precip, prod)
	byName := make(map[string]schema.DatasetDescriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}
	var tierSum float64
	tiers := 0
	for _, src := range sources {
		d, ok := byName[src]
		if !ok {
			continue
		}
		tierSum += tierPoints(d.QualityTier())
		tiers++
	}
	quality, qualityDetail := 15.0, "quality unknown"
	if tiers > 0 {
		quality = tierSum / float64(tiers)
		qualityDetail = fmt.Sprintf("mean source quality over %d datasets", tiers)
	}
	factors = append(factors, Factor{Name: "quality", Points: quality, Detail: qualityDetail})

	diversity := 5.0
	if len(sources) >= 2 {
		diversity = 10
	}
	factors = append(factors, Factor{Name: "diversity", Points: diversity, Detail: fmt.Sprintf("%d distinct sources", len(sources))})

	if len(precip) > 0 && len(prod) > 0 {
		factors = append(factors, Factor{Name: "cross-domain", Points: 10, Detail: "rainfall and production combined"})
	}

	var total float64
	for _, f := range factors {
		total += f.Points
	}
	score := int(math.Min(MaxConfidence, math.Max(0, total)))
	return Confidence{Score: score, Factors: factors}
}

func tierPoints(tier string) float64 {
	switch tier {
	case "high":
		return 20
	case "medium":
		return 15
	default:
		return 10
	}
}

// foundLocations counts requested locations with at least one statistic.
func foundLocations(requested []string, precip []PrecipitationStat, prod []ProductionStat) int {
	hit := make(map[string]bool)
	for _, s := range precip {
		hit[strings.ToLower(s.Query)] = true
	}
	for _, s := range prod {
		hit[strings.ToLower(s.Query)] = true
	}
	found := 0
	for _, r := range requested {
		if hit[strings.ToLower(r)] {
			found++
		}
	}
	return found
}

// usedSources lists distinct sources in first-use order.
func usedSources(precip []PrecipitationStat, prod []ProductionStat) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range precip {
		add(s.Source)
	}
	for _, s := range prod {
		add(s.Source)
	}
	return out
}
