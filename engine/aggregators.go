package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// AGGREGATORS: Numeric samples, summaries, ranking, correlation
// ============================================================================
// Coercion drops non-numeric cells instead of failing: a statistic is only
// emitted when the numeric sample is non-empty.
// ============================================================================

// NumericSample returns the numeric values of column across the view, in
// row order, skipping cells that fail coercion.
func NumericSample(view RecordView, column string) []float64 {
	out := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, column); ok {
			out = append(out, v)
		}
	}
	return out
}

// Sum adds up vals.
func Sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return Sum(vals) / float64(len(vals))
}

// MinMax returns the smallest and largest values, or zeros for an empty sample.
func MinMax(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Pearson computes the correlation coefficient of xs and ys. ok is false for
// mismatched lengths, fewer than two points, or a constant series.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r = sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r)), true
}

// UniqueValues returns distinct non-empty values of column in first-seen order.
func UniqueValues(view RecordView, column string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, column)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// yearRange renders the numeric years of the view as "2015-2016", "2015",
// or "N/A". A table without a year column covers "All".
func yearRange(view RecordView, yearColumn string) string {
	if yearColumn == "" {
		return "All"
	}
	var years []float64
	for i := 0; i < view.Len(); i++ {
		if y, ok := view.Measure(i, yearColumn); ok {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return "N/A"
	}
	lo, hi := MinMax(years)
	if lo == hi {
		return fmt.Sprintf("%d", int(lo))
	}
	return fmt.Sprintf("%d-%d", int(lo), int(hi))
}

// ============================================================================
// RANKING
// ============================================================================

// RankPrecipitation stable-sorts stats by mean rainfall and truncates to
// limit (0 = no limit). Ties keep insertion order.
func RankPrecipitation(stats []PrecipitationStat, descending bool, limit int) []PrecipitationStat {
	out := make([]PrecipitationStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Mean < out[j].Mean
	})
	return truncate(out, limit)
}

// RankProduction stable-sorts stats by total production and truncates to
// limit (0 = no limit). Ties keep insertion order.
func RankProduction(stats []ProductionStat, descending bool, limit int) []ProductionStat {
	out := make([]ProductionStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Total > out[j].Total
		}
		return out[i].Total < out[j].Total
	})
	return truncate(out, limit)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatTonnes renders a production figure rounded to whole tonnes.
func FormatTonnes(v float64) string {
	return FormatInt(int(math.Round(v))) + " tonnes"
}

// FormatMM renders a rainfall figure with one decimal.
func FormatMM(v float64) string {
	return fmt.Sprintf("%.1f mm", v)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TitleCase title-cases each word and collapses runs of whitespace:
// "finger  millet" → "Finger Millet". A Caser is not safe for concurrent
// use, so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
