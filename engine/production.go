package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// PRODUCTION EXECUTOR
// ============================================================================
// Per table:
//   1. Location column = state if present, else district. A requested
//      location with no state match is retried against the district column.
//   2. Crops: the requested ones, or up to CropSampleLimit distinct crops of
//      the location's rows. A table without a crop column answers on
//      location alone, for "All Crops" or under each requested crop.
//   3. Per location × crop: numeric production sample → total/mean, area sum
//   4. Results keyed by "location_crop"
// ============================================================================

const allCropsLabel = "All Crops"

// QueryProduction computes production statistics for q over datasets,
// recording one citation per emitted statistic in tracker.
func QueryProduction(q StructuredQuery, datasets []*schema.Dataset, tracker *CitationTracker, opts ...Option) ProductionResult {
	cfg := applyOptions(opts)
	log := cfg.Logger.Named("production")

	var res ProductionResult
	keys := make(map[string]string)
	for _, ds := range datasets {
		queryProductionTable(q, ds, tracker, cfg, log, keys, &res)
	}

	log.Debug("Production query complete",
		zap.Int("datasets", len(datasets)),
		zap.Int("stats", len(res.Stats)),
		zap.Int("skipped", len(res.Skipped())))
	return res
}

type productionColumns struct {
	location string
	district string // fallback location column, "" if none or same as location
	crop     string
	value    string
	area     string
	year     string
}

func resolveProductionColumns(kw *schema.Keywords, t *schema.Table) (productionColumns, error) {
	var c productionColumns
	state, hasState := kw.Resolve(t, schema.RoleState)
	district, hasDistrict := kw.Resolve(t, schema.RoleDistrict)
	switch {
	case hasState:
		c.location = state
		if hasDistrict && district != state {
			c.district = district
		}
	case hasDistrict:
		c.location = district
	default:
		return c, fmt.Errorf("no state or district column")
	}

	var ok bool
	if c.value, ok = kw.Resolve(t, schema.RoleProduction); !ok {
		return c, fmt.Errorf("no production column")
	}
	c.crop, _ = kw.Resolve(t, schema.RoleCrop)
	c.area, _ = kw.Resolve(t, schema.RoleArea)
	c.year, _ = kw.Resolve(t, schema.RoleYear)
	return c, nil
}

func (c productionColumns) used() []string {
	cols := []string{c.location}
	if c.crop != "" {
		cols = append(cols, c.crop)
	}
	cols = append(cols, c.value)
	if c.area != "" {
		cols = append(cols, c.area)
	}
	return cols
}

func queryProductionTable(q StructuredQuery, ds *schema.Dataset, tracker *CitationTracker, cfg *config, log *zap.Logger, keys map[string]string, res *ProductionResult) {
	source := ds.Name()
	cols, err := resolveProductionColumns(cfg.Keywords, ds.Table)
	if err != nil {
		res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Status: OutcomeMissingColumn, Detail: err.Error()})
		log.Debug("Skipping production table", zap.String("dataset", source), zap.Error(err))
		return
	}

	full := NewTableView(ds.Table)
	all := q.AllScope()
	candidates := q.SpecificLocations()
	if all {
		candidates = UniqueValues(full, cols.location)
	}

	for _, cand := range candidates {
		var sel RecordView
		locCol := cols.location
		if all {
			sel = MatchEquals(full, locCol, cand)
		} else {
			sel = MatchContains(full, locCol, cand)
			if sel.Len() == 0 && cols.district != "" {
				locCol = cols.district
				sel = MatchContains(full, locCol, cand)
			}
		}
		if sel.Len() == 0 {
			res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: cand, Status: OutcomeNoMatch})
			continue
		}

		label := resolvedLabel(sel, locCol, cand)
		sel = applyTimeFilters(sel, full, cols.year, q)

		for _, target := range cropTargets(q, sel, cols, cfg.CropSampleLimit) {
			cropSel := sel
			switch {
			case cols.crop == "":
			case target.exact:
				cropSel = MatchEquals(sel, cols.crop, target.query)
			default:
				cropSel = MatchContains(sel, cols.crop, target.query)
			}
			if cropSel.Len() == 0 {
				res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: label, Crop: target.query, Status: OutcomeNoMatch})
				continue
			}

			crop := target.label
			if cols.crop != "" {
				crop = resolvedLabel(cropSel, cols.crop, TitleCase(target.query))
			}

			sample := NumericSample(cropSel, cols.value)
			if len(sample) == 0 {
				res.Outcomes = append(res.Outcomes, Outcome{
					Dataset: source, Location: label, Crop: crop, Status: OutcomeNoNumeric,
					Detail: fmt.Sprintf("%d rows, none numeric in %s", cropSel.Len(), cols.value),
				})
				log.Debug("No numeric production", zap.String("dataset", source), zap.String("location", label), zap.String("crop", crop))
				continue
			}

			key, ok := claimKey(keys, label+"_"+crop, source)
			if !ok {
				res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: label, Crop: crop, Status: OutcomeDuplicate})
				continue
			}

			stat := ProductionStat{
				Key:          key,
				Location:     label,
				Crop:         crop,
				Query:        cand,
				Total:        Sum(sample),
				Mean:         Mean(sample),
				Observations: len(sample),
				Source:       source,
			}
			if cols.area != "" {
				if areas := NumericSample(cropSel, cols.area); len(areas) > 0 {
					area := Sum(areas)
					stat.Area = &area
				}
			}
			res.Stats = append(res.Stats, stat)
			res.Outcomes = append(res.Outcomes, Outcome{Dataset: source, Location: label, Crop: crop, Status: OutcomeOK})
			tracker.Add(source, fmt.Sprintf("%s production for %s", crop, label), stat.Observations, cols.used())
		}
	}
}

type cropTarget struct {
	query string // value matched against the crop column
	label string // label used when the table has no crop column
	exact bool   // sampled values match exactly, requested ones by substring
}

// cropTargets lists the crops to aggregate for one location. A table
// without a crop column answers on location alone.
func cropTargets(q StructuredQuery, sel RecordView, cols productionColumns, sampleLimit int) []cropTarget {
	if cols.crop == "" {
		if len(q.Crops) == 0 {
			return []cropTarget{{label: allCropsLabel}}
		}
		targets := make([]cropTarget, len(q.Crops))
		for i, c := range q.Crops {
			targets[i] = cropTarget{query: c, label: TitleCase(c)}
		}
		return targets
	}

	if len(q.Crops) > 0 {
		targets := make([]cropTarget, len(q.Crops))
		for i, c := range q.Crops {
			targets[i] = cropTarget{query: c}
		}
		return targets
	}

	sampled := truncate(UniqueValues(sel, cols.crop), sampleLimit)
	targets := make([]cropTarget, len(sampled))
	for i, c := range sampled {
		targets[i] = cropTarget{query: c, exact: true}
	}
	return targets
}
