package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	samarth "github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

var formats = []string{"json", "pretty", "text", "csv"}

func validFormat(f string) bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

func render(w io.Writer, ans *samarth.Answer, format string) error {
	switch format {
	case "csv":
		return writeCSV(w, ans.Result)
	case "text":
		writeText(w, ans.Result)
		return nil
	default:
		return writeJSON(w, ans, format == "pretty")
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// TEXT OUTPUT: the narrative with coloured headings
// ============================================================================

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgYellow)
)

func writeText(w io.Writer, res *engine.Result) {
	if res == nil || res.Narrative == "" {
		fmt.Fprintln(w, "No result.")
		return
	}
	for _, line := range strings.Split(res.Narrative, "\n") {
		switch {
		case strings.HasPrefix(line, "#"):
			fmt.Fprintln(w, headingColor.Sprint(strings.TrimSpace(strings.TrimLeft(line, "#"))))
		case strings.HasPrefix(line, "Confidence:"):
			fmt.Fprintln(w, confidenceColor(res.Confidence.Score).Sprint(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
	for _, s := range res.Suggestions {
		fmt.Fprintln(w, noteColor.Sprint("→ "+s))
	}
}

func confidenceColor(score int) *color.Color {
	switch {
	case score >= 75:
		return color.New(color.FgGreen)
	case score >= 50:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

// ============================================================================
// CSV OUTPUT: tables first, then chart series, then the narrative
// ============================================================================

func writeCSV(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)

	switch {
	case res == nil:
		_ = cw.Write([]string{"Result", "No data"})
	case len(res.Tables) > 0:
		for i, t := range res.Tables {
			if i > 0 {
				_ = cw.Write(nil)
			}
			writeTableCSV(cw, t)
		}
	case res.Chart != nil && len(res.Chart.Series) > 0:
		writeChartCSV(cw, res.Chart)
	default:
		_ = cw.Write([]string{"Summary"})
		_ = cw.Write([]string{res.Narrative})
	}

	cw.Flush()
	return cw.Error()
}

func writeTableCSV(cw *csv.Writer, t *engine.TableData) {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	_ = cw.Write(headers)
	for _, row := range t.Rows {
		_ = cw.Write(row)
	}
	if t.Footer != nil {
		row := make([]string, len(t.Columns))
		row[0] = t.Footer.Label
		for i, c := range t.Columns {
			if v, ok := t.Footer.Values[c.Key]; ok && i > 0 {
				row[i] = v
			}
		}
		_ = cw.Write(row)
	}
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel, yLabel := chart.XAxis, chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		_ = cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			_ = cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	_ = cw.Write(headers)
	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		_ = cw.Write(row)
	}
}

// ============================================================================
// DATASETS
// ============================================================================

func writeDatasets(w io.Writer, descriptors []schema.DatasetDescriptor) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, headingColor.Sprint("NAME\tCATEGORY\tRECORDS\tYEARS\tQUALITY"))
	for _, d := range descriptors {
		years := "snapshot"
		if d.YearSpan != nil {
			years = fmt.Sprintf("%d-%d", d.YearSpan.Min, d.YearSpan.Max)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.Name, d.Category, d.RecordCount, years, d.QualityTier())
	}
	_ = tw.Flush()
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
