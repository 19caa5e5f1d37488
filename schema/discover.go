package schema

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// DATASET CLASSIFIER: Heuristic category + data-quality metadata
// ============================================================================
// Pipeline per table:
//   1. Concatenate lowercased column names → keyword scan per category
//   2. Ambiguous (both or neither) → month columns, then a year column,
//      decide precipitation; otherwise production
//   3. Null ratio over every cell, record count, numeric year span
//   4. Column profiles (null count, numeric flag, sample values)
//
// Classification is a pure function of the table: calling it twice yields
// the same descriptor.
// ============================================================================

// Classify describes t using the embedded keyword table.
func Classify(t *Table) DatasetDescriptor {
	return DefaultKeywords().Classify(t)
}

// Classify describes t using this keyword table.
func (k *Keywords) Classify(t *Table) DatasetDescriptor {
	d := DatasetDescriptor{
		Name:        t.Name(),
		Category:    k.Categorize(t),
		RecordCount: t.Len(),
		YearSpan:    k.yearSpan(t),
	}

	nulls := 0
	d.Columns = make([]ColumnProfile, len(t.columns))
	for i := range t.columns {
		d.Columns[i] = profileColumn(t, i)
		nulls += d.Columns[i].NullCount
	}
	if cells := t.Len() * len(t.columns); cells > 0 {
		d.NullRatio = float64(nulls) / float64(cells)
	}
	return d
}

// Categorize assigns exactly one category to t.
func (k *Keywords) Categorize(t *Table) Category {
	header := strings.ToLower(strings.Join(t.columns, " "))
	rain := containsAny(header, k.Precipitation)
	crop := containsAny(header, k.Production)

	switch {
	case rain && !crop:
		return CategoryPrecipitation
	case crop && !rain:
		return CategoryProduction
	case len(k.MonthColumns(t)) > 0:
		return CategoryPrecipitation
	case yearColumn(t) != "":
		return CategoryPrecipitation
	default:
		return CategoryProduction
	}
}

// yearSpan reads the first column whose name contains "year". A column with
// no numeric values leaves the span absent.
func (k *Keywords) yearSpan(t *Table) *YearSpan {
	col := yearColumn(t)
	if col == "" {
		return nil
	}
	var span *YearSpan
	for i := 0; i < t.Len(); i++ {
		y, ok := ParseYear(t.Cell(i, col))
		if !ok {
			continue
		}
		if span == nil {
			span = &YearSpan{Min: y, Max: y}
			continue
		}
		if y < span.Min {
			span.Min = y
		}
		if y > span.Max {
			span.Max = y
		}
	}
	return span
}

func yearColumn(t *Table) string {
	for _, c := range t.columns {
		if strings.Contains(strings.ToLower(c), "year") {
			return c
		}
	}
	return ""
}

// ============================================================================
// COLUMN PROFILING
// ============================================================================

func profileColumn(t *Table, index int) ColumnProfile {
	header := t.columns[index]
	p := ColumnProfile{
		Name:        header,
		Key:         toSnakeCase(header),
		DisplayName: toDisplayName(header),
	}

	uniqueSet := make(map[string]bool)
	numeric := 0
	for _, row := range t.rows {
		val := row[index]
		if IsNull(val) {
			p.NullCount++
			continue
		}
		uniqueSet[val] = true
		if _, ok := ParseNumber(val); ok {
			numeric++
		}
	}

	present := t.Len() - p.NullCount
	p.UniqueCount = len(uniqueSet)
	// 80% of non-null values must parse, same threshold as type detection
	p.Numeric = present > 0 && numeric >= int(float64(present)*0.8)
	if !p.Numeric {
		p.SampleValues = collectSamples(uniqueSet, 10)
	}
	return p
}

// ============================================================================
// VALUE COERCION
// ============================================================================

// IsNull reports whether a cell counts as missing.
func IsNull(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "n/a", "na", "nan", "none":
		return true
	}
	return false
}

// ParseNumber coerces a cell to float64. Thousands separators are accepted;
// anything else that fails to parse (or is NaN/Inf) is reported as not numeric.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseYear coerces a year cell ("2015", "2015.0") to an int.
func ParseYear(s string) (int, bool) {
	f, ok := ParseNumber(s)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = strings.ToLower(result.String())
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// toDisplayName cleans a header for human display.
// "state_name" → "State Name", "ANNUAL" → "Annual"
func toDisplayName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// collectSamples picks up to maxSamples values, sorted for deterministic output.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
