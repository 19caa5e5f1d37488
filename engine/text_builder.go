package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// TEXT BUILDER: Markdown narrative for a Summary
// ============================================================================
// Layout:
//   ### <action header>
//   <action body>
//   #### Notes            (analysis notes, if any)
//   #### Data Quality     (coverage, snapshot, granularity, timestamp)
//   #### Sources          (formatted citations)
// ============================================================================

// NarrativeInput bundles what the narrative needs beyond the Summary.
type NarrativeInput struct {
	Query       StructuredQuery
	Summary     Summary
	Descriptors []schema.DatasetDescriptor
	Citations   []Citation
	Confidence  Confidence
	Now         time.Time
}

// BuildNarrative renders the answer text.
func BuildNarrative(in NarrativeInput) string {
	var b strings.Builder
	s := in.Summary

	switch s.Action {
	case ActionTop, ActionBottom:
		writeRanking(&b, s)
	case ActionCorrelate:
		writeCorrelation(&b, s)
	case ActionRecommend:
		writeRecommendations(&b, s)
	case ActionTrend:
		writeTrends(&b, s)
	case ActionIdentify:
		writeIdentification(&b, s)
	default:
		writeComparison(&b, in.Query, s)
	}

	if in.Query.Note != "" || len(s.Notes) > 0 {
		b.WriteString("\n#### Notes\n")
		if in.Query.Note != "" {
			fmt.Fprintf(&b, "- %s\n", in.Query.Note)
		}
		for _, n := range s.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	writeDataQuality(&b, in)

	b.WriteString("\n#### Sources\n")
	b.WriteString(FormatCitations(in.Citations))
	b.WriteString("\n")
	return b.String()
}

// ============================================================================
// ACTION SECTIONS
// ============================================================================

func writeRanking(b *strings.Builder, s Summary) {
	word := "Top"
	if s.Action == ActionBottom {
		word = "Bottom"
	}
	if len(s.Rainfall) > 0 {
		fmt.Fprintf(b, "### %s %d Regions by Rainfall\n\n", word, len(s.Rainfall))
		for i, e := range s.Rainfall {
			fmt.Fprintf(b, "%d. **%s**: %s average (range %s to %s, %s, %s)\n",
				i+1, e.Location, FormatMM(e.Mean), FormatMM(e.Min), FormatMM(e.Max), e.YearRange, e.Source)
		}
	}
	if len(s.Production) > 0 {
		if len(s.Rainfall) > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "### %s %d Districts by Crop Production\n\n", word, len(s.Production))
		for i, e := range s.Production {
			fmt.Fprintf(b, "%d. **%s** (%s): %s (%s)\n", i+1, e.Location, e.Crop, FormatTonnes(e.Total), e.Source)
		}
	}
}

func writeComparison(b *strings.Builder, q StructuredQuery, s Summary) {
	if locs := q.SpecificLocations(); len(locs) > 1 {
		fmt.Fprintf(b, "### Comparative Analysis: %s\n\n", strings.Join(locs, " vs "))
	} else {
		b.WriteString("### Comparative Analysis\n\n")
	}

	if len(s.Rainfall) > 0 {
		b.WriteString("**Rainfall**\n\n")
		for _, e := range s.Rainfall {
			fmt.Fprintf(b, "- **%s**: %s average, %s to %s over %s (%d observations). %s\n",
				e.Location, FormatMM(e.Mean), FormatMM(e.Min), FormatMM(e.Max), e.YearRange, e.Observations, classText(e.Class))
		}
		b.WriteString("\n")
	}
	if len(s.Production) > 0 {
		b.WriteString("**Crop Production**\n\n")
		for _, e := range s.Production {
			fmt.Fprintf(b, "- **%s** (%s): total %s, average %s per record", e.Location, e.Crop, FormatTonnes(e.Total), FormatTonnes(e.Mean))
			if e.Area != nil {
				fmt.Fprintf(b, ", area %s ha", FormatInt(int(*e.Area)))
			}
			if e.Productivity != nil {
				fmt.Fprintf(b, ", productivity %.2f t/ha", *e.Productivity)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(s.Pairs) > 0 {
		b.WriteString("**Rainfall and Production**\n\n")
		writePairs(b, s.Pairs)
	}
}

func writePairs(b *strings.Builder, pairs []PairInsight) {
	for _, p := range pairs {
		fmt.Fprintf(b, "- %s (%s) ↔ %s %s (%s): %s\n",
			p.Precipitation.Location, FormatMM(p.Precipitation.Mean),
			p.Production.Location, p.Production.Crop, FormatTonnes(p.Production.Total), p.Insight)
	}
}

func classText(c RainfallClass) string {
	switch c {
	case RainfallLow:
		return "Low-rainfall region. Suitable for drought-resistant crops."
	case RainfallHigh:
		return "High-rainfall region. Optimal for water-intensive crops like rice."
	default:
		return "Moderate-rainfall region. Suitable for diverse crop cultivation."
	}
}

func writeCorrelation(b *strings.Builder, s Summary) {
	b.WriteString("### Correlation Analysis: Rainfall and Crop Production\n\n")
	c := s.Correlation
	if c == nil {
		b.WriteString("No correlation could be computed.\n")
		return
	}
	if c.Sufficient() {
		fmt.Fprintf(b, "Pearson coefficient **%.2f** over %d matched location pairs (%s, %s).\n\n",
			*c.Coefficient, c.Pairs, c.Strength, c.Direction)
	}
	b.WriteString(c.Interpretation)
	b.WriteString("\n")
	if len(s.Pairs) > 0 {
		b.WriteString("\n")
		writePairs(b, s.Pairs)
	}
}

func writeRecommendations(b *strings.Builder, s Summary) {
	b.WriteString("### Policy Recommendations Based on Agricultural Data\n\n")
	if len(s.Recommendations) == 0 && s.BestPractice == nil {
		b.WriteString("Not enough data to ground recommendations.\n")
		return
	}
	for _, r := range s.Recommendations {
		fmt.Fprintf(b, "- **%s rainfall** (%s): %s\n", TitleCase(string(r.Class)), strings.Join(r.Locations, ", "), r.Advice)
	}
	if bp := s.BestPractice; bp != nil {
		fmt.Fprintf(b, "- **Best practice**: %s leads %s production with %s; study and replicate its practices in comparable regions.\n",
			bp.Location, bp.Crop, FormatTonnes(bp.Total))
	}
}

func writeTrends(b *strings.Builder, s Summary) {
	b.WriteString("### Trend Analysis\n\n")
	for _, t := range s.Trends {
		fmt.Fprintf(b, "- **%s** (%s): mean %s, min %s, max %s, variation %.1f%% of mean\n",
			t.Location, t.YearRange, FormatMM(t.Mean), FormatMM(t.Min), FormatMM(t.Max), t.RangePct)
	}
	if len(s.Trends) == 0 && len(s.Production) > 0 {
		for _, e := range s.Production {
			fmt.Fprintf(b, "- **%s** (%s): %s\n", e.Location, e.Crop, FormatTonnes(e.Total))
		}
	}
}

func writeIdentification(b *strings.Builder, s Summary) {
	b.WriteString("### Agricultural Data Insights\n\n")
	id := s.Identification
	if id == nil {
		b.WriteString("Nothing to identify in the matched data.\n")
		return
	}
	if id.Top != nil {
		fmt.Fprintf(b, "- **Highest producer**: %s (%s) with %s\n", id.Top.Location, id.Top.Crop, FormatTonnes(id.Top.Total))
	}
	if id.Lowest != nil {
		fmt.Fprintf(b, "- **Lowest producer**: %s (%s) with %s\n", id.Lowest.Location, id.Lowest.Crop, FormatTonnes(id.Lowest.Total))
	}
	if id.Wettest != nil {
		fmt.Fprintf(b, "- **Wettest region**: %s with %s average\n", id.Wettest.Location, FormatMM(id.Wettest.Mean))
	}
	if id.Driest != nil {
		fmt.Fprintf(b, "- **Driest region**: %s with %s average\n", id.Driest.Location, FormatMM(id.Driest.Mean))
	}
}

// ============================================================================
// DATA QUALITY
// ============================================================================

func writeDataQuality(b *strings.Builder, in NarrativeInput) {
	b.WriteString("\n#### Data Quality\n")

	used := make(map[string]bool)
	for _, c := range in.Citations {
		used[c.Source] = true
	}
	var hasPrecip, hasProd bool
	for _, d := range in.Descriptors {
		if !used[d.Name] {
			continue
		}
		switch d.Category {
		case schema.CategoryPrecipitation:
			hasPrecip = true
			if d.YearSpan != nil {
				fmt.Fprintf(b, "- Rainfall data from %s covers %d-%d (%s quality).\n", d.Name, d.YearSpan.Min, d.YearSpan.Max, d.QualityTier())
			} else {
				fmt.Fprintf(b, "- Rainfall data from %s has no usable year column (%s quality).\n", d.Name, d.QualityTier())
			}
		case schema.CategoryProduction:
			hasProd = true
			fmt.Fprintf(b, "- Crop data from %s is a snapshot without a time axis (%s quality).\n", d.Name, d.QualityTier())
		}
	}
	if hasPrecip && hasProd {
		b.WriteString("- Rainfall is reported by meteorological subdivision and production by district or state; location pairing is approximate.\n")
	}
	fmt.Fprintf(b, "- Confidence: %d/%d (heuristic indicator, not a statistical interval).\n", in.Confidence.Score, MaxConfidence)
	if !in.Now.IsZero() {
		fmt.Fprintf(b, "- Analysis generated %s.\n", in.Now.Format("2006-01-02 15:04:05"))
	}
}
