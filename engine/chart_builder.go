package engine

// ============================================================================
// CHART BUILDER: ChartConfig for the rendering layer
// ============================================================================
// Series carry already-computed statistics; the renderer only draws.
// ============================================================================

// ChartConfig describes a chart for an external renderer.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "bar", "grouped_bar"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries is one named data series.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint is one labelled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart picks the most informative chart for s, or nil when there is
// nothing to plot.
func BuildChart(s Summary) *ChartConfig {
	var cfg *ChartConfig
	switch {
	case len(s.Trends) > 0:
		cfg = trendChart(s.Trends)
	case len(s.Pairs) > 0 && (s.Action == ActionCorrelate || s.Action == ActionCompare):
		cfg = pairChart(s.Pairs)
	case len(s.Rainfall) > 0:
		cfg = rainfallChart(s.Rainfall)
	case len(s.Production) > 0:
		cfg = productionChart(s.Production)
	default:
		return nil
	}
	cfg.ShowLegend = len(cfg.Series) > 1
	cfg.ShowGrid = true
	cfg.Colors = assignColors(len(cfg.Series))
	return cfg
}

func rainfallChart(entries []RainfallEntry) *ChartConfig {
	points := make([]ChartPoint, len(entries))
	for i, e := range entries {
		points[i] = ChartPoint{Label: e.Location, Value: RoundTo2(e.Mean)}
	}
	return &ChartConfig{
		ChartType: "bar",
		Title:     "Mean Annual Rainfall",
		XAxis:     "Location",
		YAxis:     "Rainfall (mm)",
		Series:    []ChartSeries{{Name: "Mean rainfall", Data: points}},
	}
}

func productionChart(entries []ProductionEntry) *ChartConfig {
	points := make([]ChartPoint, len(entries))
	for i, e := range entries {
		points[i] = ChartPoint{Label: e.Location + " (" + e.Crop + ")", Value: RoundTo2(e.Total)}
	}
	return &ChartConfig{
		ChartType: "bar",
		Title:     "Crop Production",
		XAxis:     "Location",
		YAxis:     "Production (tonnes)",
		Series:    []ChartSeries{{Name: "Total production", Data: points}},
	}
}

func trendChart(trends []Trend) *ChartConfig {
	lo := make([]ChartPoint, len(trends))
	mean := make([]ChartPoint, len(trends))
	hi := make([]ChartPoint, len(trends))
	for i, t := range trends {
		lo[i] = ChartPoint{Label: t.Location, Value: RoundTo2(t.Min)}
		mean[i] = ChartPoint{Label: t.Location, Value: RoundTo2(t.Mean)}
		hi[i] = ChartPoint{Label: t.Location, Value: RoundTo2(t.Max)}
	}
	return &ChartConfig{
		ChartType: "grouped_bar",
		Title:     "Rainfall Variation",
		XAxis:     "Location",
		YAxis:     "Rainfall (mm)",
		Series: []ChartSeries{
			{Name: "Min", Data: lo},
			{Name: "Mean", Data: mean},
			{Name: "Max", Data: hi},
		},
	}
}

func pairChart(pairs []PairInsight) *ChartConfig {
	rain := make([]ChartPoint, len(pairs))
	prod := make([]ChartPoint, len(pairs))
	for i, p := range pairs {
		label := p.Precipitation.Location + " / " + p.Production.Location
		rain[i] = ChartPoint{Label: label, Value: RoundTo2(p.Precipitation.Mean)}
		prod[i] = ChartPoint{Label: label, Value: RoundTo2(p.Production.Total)}
	}
	return &ChartConfig{
		ChartType: "grouped_bar",
		Title:     "Rainfall vs Production",
		XAxis:     "Location pair",
		Series: []ChartSeries{
			{Name: "Mean rainfall (mm)", Data: rain},
			{Name: "Production (t)", Data: prod},
		},
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
