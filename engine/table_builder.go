package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER: Render-ready tables from a Summary
// ============================================================================
// One table per populated section, in narrative order. Cells are strings so
// a renderer (or the CLI CSV writer) never re-derives a statistic.
// ============================================================================

// TableData is a titled grid of formatted cells.
type TableData struct {
	Title   string       `json:"title"`
	Columns []Column     `json:"columns"`
	Rows    [][]string   `json:"rows"`
	Footer  *TableFooter `json:"footer,omitempty"`
}

// Column describes one table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// TableFooter is a totals row.
type TableFooter struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

func textCol(key, label string) Column   { return Column{Key: key, Label: label, Type: "text", Align: "left"} }
func numberCol(key, label string) Column { return Column{Key: key, Label: label, Type: "number", Align: "right"} }

// BuildTables returns the tables for every populated section of s.
func BuildTables(s Summary) []*TableData {
	var out []*TableData
	if len(s.Trends) > 0 {
		out = append(out, buildTrendTable(s.Trends))
	} else if len(s.Rainfall) > 0 {
		out = append(out, buildRainfallTable(s.Rainfall))
	}
	if len(s.Production) > 0 {
		out = append(out, buildProductionTable(s.Production))
	}
	if len(s.Pairs) > 0 {
		out = append(out, buildPairTable(s.Pairs))
	}
	return out
}

func buildRainfallTable(entries []RainfallEntry) *TableData {
	t := &TableData{
		Title: "Annual Rainfall",
		Columns: []Column{
			textCol("location", "Location"),
			numberCol("mean", "Mean (mm)"),
			numberCol("min", "Min (mm)"),
			numberCol("max", "Max (mm)"),
			textCol("years", "Years"),
			numberCol("observations", "Observations"),
			textCol("class", "Class"),
			textCol("source", "Source"),
		},
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.Location,
			fmt.Sprintf("%.2f", e.Mean),
			fmt.Sprintf("%.2f", e.Min),
			fmt.Sprintf("%.2f", e.Max),
			e.YearRange,
			fmt.Sprintf("%d", e.Observations),
			string(e.Class),
			e.Source,
		})
	}
	return t
}

func buildProductionTable(entries []ProductionEntry) *TableData {
	t := &TableData{
		Title: "Crop Production",
		Columns: []Column{
			textCol("location", "Location"),
			textCol("crop", "Crop"),
			numberCol("total", "Total (t)"),
			numberCol("mean", "Mean (t)"),
			numberCol("area", "Area (ha)"),
			numberCol("productivity", "t/ha"),
			numberCol("observations", "Observations"),
			textCol("source", "Source"),
		},
	}
	var total float64
	for _, e := range entries {
		area, prod := "", ""
		if e.Area != nil {
			area = fmt.Sprintf("%.2f", *e.Area)
		}
		if e.Productivity != nil {
			prod = fmt.Sprintf("%.2f", *e.Productivity)
		}
		t.Rows = append(t.Rows, []string{
			e.Location,
			e.Crop,
			fmt.Sprintf("%.2f", e.Total),
			fmt.Sprintf("%.2f", e.Mean),
			area,
			prod,
			fmt.Sprintf("%d", e.Observations),
			e.Source,
		})
		total += e.Total
	}
	t.Footer = &TableFooter{
		Label:  fmt.Sprintf("Total (%d entries)", len(entries)),
		Values: map[string]string{"total": FormatTonnes(total)},
	}
	return t
}

func buildTrendTable(trends []Trend) *TableData {
	t := &TableData{
		Title: "Rainfall Variation",
		Columns: []Column{
			textCol("location", "Location"),
			textCol("years", "Years"),
			numberCol("mean", "Mean (mm)"),
			numberCol("min", "Min (mm)"),
			numberCol("max", "Max (mm)"),
			numberCol("range_pct", "Range % of Mean"),
		},
	}
	for _, tr := range trends {
		t.Rows = append(t.Rows, []string{
			tr.Location,
			tr.YearRange,
			fmt.Sprintf("%.2f", tr.Mean),
			fmt.Sprintf("%.2f", tr.Min),
			fmt.Sprintf("%.2f", tr.Max),
			fmt.Sprintf("%.2f", tr.RangePct),
		})
	}
	return t
}

func buildPairTable(pairs []PairInsight) *TableData {
	t := &TableData{
		Title: "Rainfall and Production",
		Columns: []Column{
			textCol("rainfall_location", "Rainfall Region"),
			numberCol("rainfall_mean", "Mean Rainfall (mm)"),
			textCol("production_location", "Production Area"),
			textCol("crop", "Crop"),
			numberCol("production_total", "Production (t)"),
			textCol("insight", "Insight"),
		},
	}
	for _, p := range pairs {
		t.Rows = append(t.Rows, []string{
			p.Precipitation.Location,
			fmt.Sprintf("%.2f", p.Precipitation.Mean),
			p.Production.Location,
			p.Production.Crop,
			fmt.Sprintf("%.2f", p.Production.Total),
			p.Insight,
		})
	}
	return t
}
