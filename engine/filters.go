package engine

import (
	"strings"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// FILTERS: Location, crop and year filtering via RecordView
// ============================================================================
// Every filter is a single pass returning a SubView (index list into the
// parent): zero data copy.
// ============================================================================

// filterView keeps the rows for which keep returns true.
func filterView(view RecordView, keep func(i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// MatchContains keeps rows whose column, case-folded, contains needle.
// Substring, not token, matching: "Punjab" also matches "West Punjab".
func MatchContains(view RecordView, column, needle string) RecordView {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return filterView(view, func(i int) bool {
		return strings.Contains(strings.ToLower(view.Dimension(i, column)), needle)
	})
}

// MatchEquals keeps rows whose column equals value, ignoring case.
func MatchEquals(view RecordView, column, value string) RecordView {
	value = strings.TrimSpace(value)
	return filterView(view, func(i int) bool {
		return strings.EqualFold(view.Dimension(i, column), value)
	})
}

// FilterYears keeps rows whose year is one of years. Rows with a non-numeric
// year are dropped.
func FilterYears(view RecordView, yearColumn string, years []int) RecordView {
	set := make(map[int]bool, len(years))
	for _, y := range years {
		set[y] = true
	}
	return filterView(view, func(i int) bool {
		y, ok := schema.ParseYear(view.Dimension(i, yearColumn))
		return ok && set[y]
	})
}

// FilterYearRange keeps rows with from <= year <= to.
func FilterYearRange(view RecordView, yearColumn string, from, to int) RecordView {
	return filterView(view, func(i int) bool {
		y, ok := schema.ParseYear(view.Dimension(i, yearColumn))
		return ok && y >= from && y <= to
	})
}

// FilterWindow keeps the trailing span years ending at maxYear, inclusive:
// year >= maxYear - span + 1.
func FilterWindow(view RecordView, yearColumn string, maxYear, span int) RecordView {
	return FilterYearRange(view, yearColumn, maxYear-span+1, maxYear)
}

// MaxYear returns the largest numeric year in the view.
func MaxYear(view RecordView, yearColumn string) (int, bool) {
	maxYear, found := 0, false
	for i := 0; i < view.Len(); i++ {
		y, ok := schema.ParseYear(view.Dimension(i, yearColumn))
		if ok && (!found || y > maxYear) {
			maxYear, found = y, true
		}
	}
	return maxYear, found
}

// applyTimeFilters narrows view by the query's explicit years and time
// window. full is the unfiltered table view the window's max year is taken
// from.
func applyTimeFilters(view, full RecordView, yearColumn string, q StructuredQuery) RecordView {
	if yearColumn == "" {
		return view
	}
	if q.TimeWindow == WindowRange && len(q.Years) >= 2 {
		from, to := minMaxInts(q.Years)
		return FilterYearRange(view, yearColumn, from, to)
	}
	if len(q.Years) > 0 {
		view = FilterYears(view, yearColumn, q.Years)
	}
	if span, ok := q.TimeWindow.Span(); ok {
		if maxYear, found := MaxYear(full, yearColumn); found {
			view = FilterWindow(view, yearColumn, maxYear, span)
		}
	}
	return view
}

func minMaxInts(vals []int) (int, int) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
