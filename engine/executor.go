package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// EXECUTOR: Feasibility → executors → analysis → narrative
// ============================================================================
// Entry point: Execute(query, corpus, opts...)
//
// Pipeline:
//   1. Re-check feasibility against what the corpus actually holds
//   2. Fresh CitationTracker for this query
//   3. Precipitation / production executors (per NeedsX flags)
//   4. Nothing found → NoResults + suggestions
//   5. Analyze → Score → BuildNarrative / BuildChart / BuildTables
//
// This function never calls a remote service. The corpus is read-only;
// concurrent Execute calls over one corpus share no mutable state.
// ============================================================================

// Snapshot infeasibility wording shared by the parsers and CheckFeasibility.
const (
	SnapshotReason  = "production data is a single snapshot; no temporal column exists"
	SnapshotRewrite = "Show current crop production across districts (snapshot data)"
	NoRainfallNote  = "no rainfall tables are loaded, so there is no time series to analyse"
)

// ErrNilCorpus is returned when Execute is called without a corpus.
var ErrNilCorpus = errors.New("engine: nil corpus")

// Result is the render-ready answer for one query.
type Result struct {
	ID            string              `json:"id"`
	Query         StructuredQuery     `json:"query"`
	NoResults     bool                `json:"noResults"`
	Narrative     string              `json:"narrative"`
	Summary       *Summary            `json:"summary,omitempty"`
	Precipitation []PrecipitationStat `json:"precipitation,omitempty"`
	Production    []ProductionStat    `json:"production,omitempty"`
	Outcomes      []Outcome           `json:"outcomes,omitempty"`
	Confidence    Confidence          `json:"confidence"`
	Citations     []Citation          `json:"citations"`
	Suggestions   []string            `json:"suggestions,omitempty"`
	Chart         *ChartConfig        `json:"chart,omitempty"`
	Tables        []*TableData        `json:"tables,omitempty"`
	Elapsed       time.Duration       `json:"elapsedNs"`
}

// Execute answers q over corpus. Per-entity failures surface as Outcomes; the
// only error is a nil corpus.
func Execute(q StructuredQuery, corpus *schema.Corpus, opts ...Option) (*Result, error) {
	if corpus == nil {
		return nil, ErrNilCorpus
	}
	cfg := applyOptions(opts)
	log := cfg.Logger.Named("executor")
	start := cfg.Now()

	if !q.NeedsPrecipitation && !q.NeedsProduction {
		q.NeedsPrecipitation, q.NeedsProduction = true, true
	}
	q = CheckFeasibility(q, corpus)
	res := &Result{ID: uuid.NewString(), Query: q, Citations: []Citation{}}

	if !q.Feasible {
		res.Narrative = infeasibleNarrative(q)
		res.Suggestions = []string{q.SuggestedRewrite}
		log.Info("Query infeasible",
			zap.String("action", string(q.Action)),
			zap.String("reason", q.InfeasibilityReason))
		return res, nil
	}

	tracker := NewCitationTracker(cfg.Now)
	var precip PrecipitationResult
	var prod ProductionResult
	if q.NeedsPrecipitation {
		precip = QueryPrecipitation(q, corpus.Precipitation(), tracker, opts...)
	}
	if q.NeedsProduction {
		prod = QueryProduction(q, corpus.Production(), tracker, opts...)
	}

	res.Precipitation = precip.Stats
	res.Production = prod.Stats
	res.Outcomes = append(append([]Outcome{}, precip.Outcomes...), prod.Outcomes...)
	res.Citations = tracker.Entries()

	if len(precip.Stats) == 0 && len(prod.Stats) == 0 {
		res.NoResults = true
		res.Suggestions = noResultSuggestions(q, corpus)
		res.Narrative = noResultNarrative(res.Suggestions)
		log.Info("Query matched no data",
			zap.Strings("locations", q.Locations),
			zap.Strings("crops", q.Crops),
			zap.Int("attempts", len(res.Outcomes)))
		return res, nil
	}

	summary := Analyze(q, precip.Stats, prod.Stats, opts...)
	descriptors := corpus.Descriptors()
	res.Summary = &summary
	res.Confidence = Score(precip.Stats, prod.Stats, q, descriptors)
	res.Narrative = BuildNarrative(NarrativeInput{
		Query:       q,
		Summary:     summary,
		Descriptors: descriptors,
		Citations:   res.Citations,
		Confidence:  res.Confidence,
		Now:         cfg.Now(),
	})
	res.Chart = BuildChart(summary)
	res.Tables = BuildTables(summary)
	res.Elapsed = cfg.Now().Sub(start)

	log.Info("Query answered",
		zap.String("id", res.ID),
		zap.String("action", string(summary.Action)),
		zap.Int("rainfallStats", len(precip.Stats)),
		zap.Int("productionStats", len(prod.Stats)),
		zap.Int("citations", len(res.Citations)),
		zap.Int("confidence", res.Confidence.Score),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// CheckFeasibility applies the snapshot rule against the loaded corpus: a
// trend needs rainfall, either because production was the only domain asked
// for or because no rainfall table exists at all. Already-infeasible
// queries are returned unchanged; a query without a reason is feasible.
func CheckFeasibility(q StructuredQuery, corpus *schema.Corpus) StructuredQuery {
	if !q.Feasible && q.InfeasibilityReason != "" {
		return q
	}
	q.Feasible = true
	if q.Action != ActionTrend {
		return q
	}
	productionOnly := q.NeedsProduction && !q.NeedsPrecipitation
	noRainfall := corpus != nil && len(corpus.Precipitation()) == 0
	if productionOnly || noRainfall {
		q.Feasible = false
		q.InfeasibilityReason = SnapshotReason
		if noRainfall && !productionOnly {
			q.InfeasibilityReason += "; " + NoRainfallNote
		}
		q.SuggestedRewrite = SnapshotRewrite
	}
	return q
}

func infeasibleNarrative(q StructuredQuery) string {
	var b strings.Builder
	b.WriteString("### Query Not Answerable As Asked\n\n")
	fmt.Fprintf(&b, "This question cannot be answered from the loaded data: %s.\n", q.InfeasibilityReason)
	if q.SuggestedRewrite != "" {
		fmt.Fprintf(&b, "\nTry instead: **%s**\n", q.SuggestedRewrite)
	}
	return b.String()
}

func noResultSuggestions(q StructuredQuery, corpus *schema.Corpus) []string {
	var out []string
	if locs := q.SpecificLocations(); len(locs) > 0 {
		out = append(out,
			fmt.Sprintf("Check the spelling of %s", strings.Join(locs, ", ")),
			"Ask about all locations instead of specific ones")
	}
	if len(q.Crops) > 0 {
		out = append(out, "Try a different crop name or drop the crop filter")
	}
	if q.TimeWindow != WindowAll || len(q.Years) > 0 {
		out = append(out, "Broaden the time window")
	}
	if names := datasetNames(corpus); len(names) > 0 {
		out = append(out, "Loaded datasets: "+strings.Join(names, ", "))
	}
	return out
}

func noResultNarrative(suggestions []string) string {
	var b strings.Builder
	b.WriteString("### No Matching Data\n\nNo rainfall or production records matched the question.\n")
	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

func datasetNames(corpus *schema.Corpus) []string {
	ds := corpus.Datasets()
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name()
	}
	return names
}
