package engine

import (
	"fmt"
	"strconv"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// RECORD VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns or mutates corpus tables. It reads through views.
//
// Implementations:
//   TableView  : wraps a *schema.Table
//   SubView    : filtered subset (indices into parent, zero-copy)
//   AnnualView : wraps any view, derives an annual total from month columns
//
// Every query builds its own views, so concurrent queries share nothing
// mutable.
// ============================================================================

// RecordView provides indexed access to a dataset.
type RecordView interface {
	Len() int
	Dimension(index int, column string) string
	Measure(index int, column string) (float64, bool)
	Columns() []string
}

// ============================================================================
// TABLE VIEW
// ============================================================================

// TableView exposes a schema.Table as a RecordView.
type TableView struct {
	table *schema.Table
}

// NewTableView wraps t.
func NewTableView(t *schema.Table) RecordView {
	return &TableView{table: t}
}

func (v *TableView) Len() int { return v.table.Len() }

func (v *TableView) Dimension(i int, column string) string {
	return v.table.Cell(i, column)
}

func (v *TableView) Measure(i int, column string) (float64, bool) {
	return schema.ParseNumber(v.table.Cell(i, column))
}

func (v *TableView) Columns() []string { return v.table.Columns() }

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent: no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, column string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], column)
}

func (v *SubView) Measure(i int, column string) (float64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Measure(v.indices[i], column)
}

func (v *SubView) Columns() []string { return v.parent.Columns() }

// ============================================================================
// ANNUAL VIEW: derived annual total (zero-copy)
// ============================================================================

// AnnualView adds a virtual column holding the per-row sum of the month
// columns. A row with no numeric month values has no annual total.
type AnnualView struct {
	parent RecordView
	column string
	months []string
}

func newAnnualView(parent RecordView, months []string) *AnnualView {
	return &AnnualView{
		parent: parent,
		column: fmt.Sprintf("sum(%s..%s)", months[0], months[len(months)-1]),
		months: months,
	}
}

// Column is the name of the derived annual-total column.
func (v *AnnualView) Column() string { return v.column }

func (v *AnnualView) Len() int { return v.parent.Len() }

func (v *AnnualView) Dimension(i int, column string) string {
	if column == v.column {
		if total, ok := v.Measure(i, column); ok {
			return strconv.FormatFloat(total, 'f', -1, 64)
		}
		return ""
	}
	return v.parent.Dimension(i, column)
}

func (v *AnnualView) Measure(i int, column string) (float64, bool) {
	if column != v.column {
		return v.parent.Measure(i, column)
	}
	var total float64
	found := false
	for _, m := range v.months {
		if val, ok := v.parent.Measure(i, m); ok {
			total += val
			found = true
		}
	}
	return total, found
}

func (v *AnnualView) Columns() []string {
	return append(v.parent.Columns(), v.column)
}
