package schema

import (
	"strings"
)

// ============================================================================
// SCHEMA: Tables and the metadata the classifier derives from them
// ============================================================================
// A Table is loaded once and shared read-only by every query. Executors never
// mutate it; they read cells through index-based views.
// ============================================================================

// Category partitions the corpus. Every table has exactly one.
type Category string

const (
	CategoryPrecipitation Category = "precipitation"
	CategoryProduction    Category = "production"
)

// Table is an immutable, in-memory rectangular dataset.
type Table struct {
	name    string
	columns []string
	rows    [][]string
	index   map[string]int
}

// NewTable builds a Table from a header and rows. Header names are trimmed.
// Rows shorter than the header are padded with empty (null) cells; extra
// cells are dropped. Inputs are copied so the caller may reuse its slices.
func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		name:    name,
		columns: make([]string, len(columns)),
		rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		t.columns[i] = c
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for _, r := range rows {
		row := make([]string, len(columns))
		for i := range row {
			if i < len(r) {
				row[i] = strings.TrimSpace(r[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Name is the table's provenance key.
func (t *Table) Name() string { return t.name }

// Columns returns the header in declared order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the trimmed cell at (row, column name), or "" if either is unknown.
func (t *Table) Cell(row int, column string) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	ci, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.rows[row][ci]
}

// HasColumn reports whether the header contains column exactly.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// ============================================================================
// DESCRIPTOR: Classification output
// ============================================================================

// YearSpan is the numeric min/max of a table's year column.
type YearSpan struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ColumnProfile summarises one column for prompts and the datasets listing.
type ColumnProfile struct {
	Name         string   `json:"name"`
	Key          string   `json:"key"`
	DisplayName  string   `json:"displayName"`
	Numeric      bool     `json:"numeric"`
	NullCount    int      `json:"nullCount"`
	UniqueCount  int      `json:"uniqueCount"`
	SampleValues []string `json:"sampleValues,omitempty"`
}

// DatasetDescriptor is created at load time and never changes afterwards.
type DatasetDescriptor struct {
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	NullRatio   float64         `json:"nullRatio"`
	RecordCount int             `json:"recordCount"`
	YearSpan    *YearSpan       `json:"yearSpan,omitempty"`
	Columns     []ColumnProfile `json:"columns,omitempty"`
}

// QualityTier buckets NullRatio: under 5% high, under 15% medium, else low.
func (d DatasetDescriptor) QualityTier() string {
	switch {
	case d.NullRatio < 0.05:
		return "high"
	case d.NullRatio < 0.15:
		return "medium"
	default:
		return "low"
	}
}

// Dataset couples a table with its descriptor.
type Dataset struct {
	Table      *Table
	Descriptor DatasetDescriptor
}

// Name returns the dataset's provenance key.
func (d *Dataset) Name() string { return d.Descriptor.Name }
