package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// PRECIPITATION EXECUTOR TESTS
// ============================================================================

func TestQueryPrecipitationSingleLocation(t *testing.T) {
	ds := mustDataset(t, "rain.csv", punjabRainfallCSV)
	tracker := NewCitationTracker(fixedClock)

	res := QueryPrecipitation(rainfallQuery("punjab"), []*schema.Dataset{ds}, tracker)

	require.Len(t, res.Stats, 1)
	s := res.Stats[0]
	assert.Equal(t, "Punjab", s.Key)
	assert.Equal(t, "Punjab", s.Location)
	assert.Equal(t, "punjab", s.Query)
	assert.InDelta(t, 650.0, s.Mean, 1e-9)
	assert.InDelta(t, 600.0, s.Min, 1e-9)
	assert.InDelta(t, 700.0, s.Max, 1e-9)
	assert.Equal(t, 2, s.Observations)
	assert.Equal(t, "2015-2016", s.YearRange)
	assert.Equal(t, "rain.csv", s.Source)

	require.Equal(t, 1, tracker.Len())
	c := tracker.Entries()[0]
	assert.Equal(t, "rain.csv", c.Source)
	assert.Equal(t, 2, c.Observations)
	assert.Equal(t, []string{"SUBDIVISION", "ANNUAL", "YEAR"}, c.Columns)
}

func TestQueryPrecipitationSynthesizesAnnualFromMonths(t *testing.T) {
	ds := mustDataset(t, "monthly.csv", monthlyRainfallCSV)
	tracker := NewCitationTracker(fixedClock)

	res := QueryPrecipitation(rainfallQuery("Vidarbha"), []*schema.Dataset{ds}, tracker)

	require.Len(t, res.Stats, 1)
	assert.InDelta(t, 780.0, res.Stats[0].Mean, 1e-9)
	require.Equal(t, 1, tracker.Len())
	assert.Equal(t, []string{"SUBDIVISION", "sum(JAN..DEC)", "YEAR"}, tracker.Entries()[0].Columns)
}

func TestQueryPrecipitationTimeFilters(t *testing.T) {
	ds := mustDataset(t, "rain.csv", decadeRainfallCSV)

	tests := []struct {
		name      string
		window    TimeWindow
		years     []int
		mean      float64
		n         int
		yearRange string
	}{
		{"all years", WindowAll, nil, 3050, 6, "2010-2016"},
		{"last 5 from table max", WindowLast5, nil, 3050, 4, "2012-2016"},
		{"explicit range", WindowRange, []int{2011, 2010}, 3050, 2, "2010-2011"},
		{"explicit year membership", WindowAll, []int{2015}, 3300, 1, "2015"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := rainfallQuery("Kerala")
			q.TimeWindow = tt.window
			q.Years = tt.years

			res := QueryPrecipitation(q, []*schema.Dataset{ds}, nil)

			require.Len(t, res.Stats, 1)
			assert.InDelta(t, tt.mean, res.Stats[0].Mean, 1e-9)
			assert.Equal(t, tt.n, res.Stats[0].Observations)
			assert.Equal(t, tt.yearRange, res.Stats[0].YearRange)
		})
	}
}

func TestQueryPrecipitationAllLocationsUsesExactMatch(t *testing.T) {
	ds := mustDataset(t, "rain.csv", decadeRainfallCSV)

	res := QueryPrecipitation(rainfallQuery(AllLocations), []*schema.Dataset{ds}, nil)

	require.Len(t, res.Stats, 3)
	assert.Equal(t, "Kerala", res.Stats[0].Location)
	assert.Equal(t, "Punjab", res.Stats[1].Location)
	assert.Equal(t, "Coastal Karnataka", res.Stats[2].Location)
	assert.Equal(t, 2, res.Stats[1].Observations)
}

func TestQueryPrecipitationSubstringMatch(t *testing.T) {
	ds := mustDataset(t, "rain.csv", decadeRainfallCSV)

	res := QueryPrecipitation(rainfallQuery("Karnataka"), []*schema.Dataset{ds}, nil)

	require.Len(t, res.Stats, 1)
	assert.Equal(t, "Coastal Karnataka", res.Stats[0].Location)
	assert.Equal(t, "Karnataka", res.Stats[0].Query)
	assert.InDelta(t, 3500.0, res.Stats[0].Mean, 1e-9)
}

func TestQueryPrecipitationTwoLocationsTwoCitations(t *testing.T) {
	ds := mustDataset(t, "rain.csv", decadeRainfallCSV)
	tracker := NewCitationTracker(fixedClock)

	res := QueryPrecipitation(rainfallQuery("Kerala", "Punjab"), []*schema.Dataset{ds}, tracker)

	assert.Len(t, res.Stats, 2)
	assert.Equal(t, 2, tracker.Len())
}

func TestQueryPrecipitationSkipsWithoutAborting(t *testing.T) {
	good := mustDataset(t, "rain.csv", punjabRainfallCSV)
	noLocation := mustDataset(t, "bare.csv", []byte("YEAR,ANNUAL\n2015,100\n"))

	res := QueryPrecipitation(rainfallQuery("Punjab", "Atlantis"), []*schema.Dataset{noLocation, good}, nil)

	require.Len(t, res.Stats, 1)
	assert.Equal(t, "Punjab", res.Stats[0].Location)

	skipped := res.Skipped()
	require.Len(t, skipped, 2)
	assert.Equal(t, OutcomeMissingColumn, skipped[0].Status)
	assert.Equal(t, "bare.csv", skipped[0].Dataset)
	assert.Equal(t, OutcomeNoMatch, skipped[1].Status)
	assert.Equal(t, "Atlantis", skipped[1].Location)
}

func TestQueryPrecipitationKeysAcrossSources(t *testing.T) {
	a := mustDataset(t, "rain.csv", punjabRainfallCSV)
	b := mustDataset(t, "rain_copy.csv", punjabRainfallCSV)

	res := QueryPrecipitation(rainfallQuery("Punjab"), []*schema.Dataset{a, b}, nil)

	require.Len(t, res.Stats, 2)
	assert.Equal(t, "Punjab", res.Stats[0].Key)
	assert.Equal(t, "Punjab [rain_copy.csv]", res.Stats[1].Key)

	s, ok := res.Lookup("Punjab [rain_copy.csv]")
	require.True(t, ok)
	assert.Equal(t, "rain_copy.csv", s.Source)
}

func TestQueryPrecipitationDuplicateSelection(t *testing.T) {
	ds := mustDataset(t, "rain.csv", punjabRainfallCSV)

	res := QueryPrecipitation(rainfallQuery("Punjab", "punj"), []*schema.Dataset{ds}, nil)

	require.Len(t, res.Stats, 1)
	require.Len(t, res.Skipped(), 1)
	assert.Equal(t, OutcomeDuplicate, res.Skipped()[0].Status)
}
