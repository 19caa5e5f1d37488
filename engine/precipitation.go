package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// PRECIPITATION EXECUTOR
// ============================================================================
// Per table:
//   1. Resolve location / year / annual-total columns
//      (no annual column → derive one from month columns, else skip table)
//   2. Candidate locations: every distinct value for "all", else the query's
//   3. Per candidate: match rows → year filters → numeric annual sample
//   4. Emit a PrecipitationStat + one citation per non-empty sample
//
// Every attempt is recorded as an Outcome; nothing aborts the loop.
// ============================================================================

// QueryPrecipitation computes rainfall statistics for q over datasets,
// recording one citation per emitted statistic in tracker.
func QueryPrecipitation(q StructuredQuery, datasets []*schema.Dataset, tracker *CitationTracker, opts ...Option) PrecipitationResult {
	cfg := applyOptions(opts)
	log := cfg.Logger.Named("precipitation")

	var res PrecipitationResult
	keys := make(map[string]string) // key → source
	for _, ds := range datasets {
		queryPrecipitationTable(q, ds, tracker, cfg, log, keys, &res)
	}

	log.Debug("Precipitation query complete",
		zap.Int("datasets", len(datasets)),
		zap.Int("stats", len(res.Stats)),
		zap.Int("skipped", len(res.Skipped())))
	return res
}

func queryPrecipitationTable(q StructuredQuery, ds *schema.Dataset, tracker *CitationTracker, cfg *config, log *zap.Logger, keys map[string]string, res *PrecipitationResult) {
	source := ds.Name()
	kw := cfg.Keywords

	locCol, ok := kw.Resolve(ds.Table, schema.RoleLocation)
	if !ok {
		res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Status: OutcomeMissingColumn, Detail: "no location column"})
		log.Debug("Skipping table without location column", zap.String("dataset", source))
		return
	}
	yearCol, _ := kw.Resolve(ds.Table, schema.RoleYear)

	var view RecordView = NewTableView(ds.Table)
	annualCol, ok := kw.Resolve(ds.Table, schema.RoleAnnual)
	if !ok {
		months := kw.MonthColumns(ds.Table)
		if len(months) == 0 {
			res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Status: OutcomeMissingColumn, Detail: "no annual or month columns"})
			log.Debug("Skipping table without annual total", zap.String("dataset", source))
			return
		}
		annual := newAnnualView(view, months)
		view, annualCol = annual, annual.Column()
	}

	columns := []string{locCol, annualCol}
	if yearCol != "" {
		columns = append(columns, yearCol)
	}

	all := q.AllScope()
	candidates := q.SpecificLocations()
	if all {
		candidates = UniqueValues(view, locCol)
	}

	for _, cand := range candidates {
		var sel RecordView
		if all {
			sel = MatchEquals(view, locCol, cand)
		} else {
			sel = MatchContains(view, locCol, cand)
		}
		if sel.Len() == 0 {
			res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: cand, Status: OutcomeNoMatch})
			continue
		}

		label := resolvedLabel(sel, locCol, cand)
		sel = applyTimeFilters(sel, view, yearCol, q)
		sample := NumericSample(sel, annualCol)
		if len(sample) == 0 {
			res.Outcomes = append(res.Outcomes, Outcome{
				Dataset: source, Location: label, Status: OutcomeNoNumeric,
				Detail: fmt.Sprintf("%d rows after filtering, none numeric in %s", sel.Len(), annualCol),
			})
			log.Debug("No numeric rainfall", zap.String("dataset", source), zap.String("location", label))
			continue
		}

		key, ok := claimKey(keys, label, source)
		if !ok {
			res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: label, Status: OutcomeDuplicate})
			continue
		}

		lo, hi := MinMax(sample)
		stat := PrecipitationStat{
			Key:          key,
			Location:     label,
			Query:        cand,
			Mean:         Mean(sample),
			Min:          lo,
			Max:          hi,
			Observations: len(sample),
			YearRange:    yearRange(sel, yearCol),
			Source:       source,
		}
		res.Stats = append(res.Stats, stat)
		res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: label, Status: OutcomeOK})
		tracker.Add(source, "rainfall statistics for "+label, stat.Observations, columns)
	}
}

// resolvedLabel names a selection by its location value when every row
// shares one, otherwise by the requested string.
func resolvedLabel(sel RecordView, column, requested string) string {
	values := UniqueValues(sel, column)
	if len(values) == 1 {
		return values[0]
	}
	return requested
}

// claimKey reserves label for source. The same label from another source is
// suffixed with the source name; the same label twice from one source is a
// duplicate selection and is refused.
func claimKey(keys map[string]string, label, source string) (string, bool) {
	owner, taken := keys[strings.ToLower(label)]
	if !taken {
		keys[strings.ToLower(label)] = source
		return label, true
	}
	if owner == source {
		return "", false
	}
	key := fmt.Sprintf("%s [%s]", label, source)
	if _, dup := keys[strings.ToLower(key)]; dup {
		return "", false
	}
	keys[strings.ToLower(key)] = source
	return key, true
}
