package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// MATCHER / CONFIDENCE / CITATION TESTS
// ============================================================================

func TestLocationsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Coastal Karnataka", "Karnataka", true},
		{"karnataka", "North Interior Karnataka", true},
		{"Andaman & Nicobar Islands", "Nicobars", true},
		{"Madhya Maharashtra", "Maharashtra", true},
		{"Punjab", "Kerala", false},
		{"A & N", "N & B", false},
		{"", "Kerala", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationsMatch(tt.a, tt.b))
			assert.Equal(t, tt.want, LocationsMatch(tt.b, tt.a))
		})
	}
}

func TestMatchIsManyToMany(t *testing.T) {
	precip := []PrecipitationStat{rain("Coastal Karnataka", 3500), rain("South Interior Karnataka", 900)}
	prod := []ProductionStat{crop("Karnataka", "Maize", 1), crop("Karnataka", "Rice", 2)}

	pairs := Match(precip, prod)

	require.Len(t, pairs, 4)
	assert.Equal(t, "Coastal Karnataka", pairs[0].PrecipitationKey)
	assert.Equal(t, "Maize", pairs[0].Production.Crop)
	assert.Equal(t, "Rice", pairs[1].Production.Crop)
	assert.Equal(t, "South Interior Karnataka", pairs[2].PrecipitationKey)
}

func TestScoreNeverExceedsCap(t *testing.T) {
	var precip []PrecipitationStat
	var prod []ProductionStat
	var descriptors []schema.DatasetDescriptor
	for i := 0; i < 10; i++ {
		src := fmt.Sprintf("src%d.csv", i)
		descriptors = append(descriptors, schema.DatasetDescriptor{Name: src, NullRatio: 0})
		if i < 5 {
			precip = append(precip, PrecipitationStat{Location: "Punjab", Query: "Punjab", Observations: 500, Source: src})
		} else {
			prod = append(prod, ProductionStat{Location: "Punjab", Query: "Punjab", Observations: 500, Source: src})
		}
	}
	q := StructuredQuery{Locations: []string{"Punjab"}}

	c := Score(precip, prod, q, descriptors)

	assert.Equal(t, MaxConfidence, c.Score)
	assert.Len(t, c.Factors, 5)
}

func TestScoreFactors(t *testing.T) {
	descriptors := []schema.DatasetDescriptor{
		{Name: "rain.csv", NullRatio: 0.01},
		{Name: "crops.csv", NullRatio: 0.20},
	}

	t.Run("all scope single source", func(t *testing.T) {
		c := Score([]PrecipitationStat{{Query: "Punjab", Observations: 2, Source: "rain.csv"}}, nil,
			StructuredQuery{Locations: []string{AllLocations}}, descriptors)
		// 35 + 10 + 20 + 5
		assert.Equal(t, 70, c.Score)
	})

	t.Run("partial coverage two domains", func(t *testing.T) {
		c := Score(
			[]PrecipitationStat{{Query: "Punjab", Observations: 60, Source: "rain.csv"}},
			[]ProductionStat{{Query: "Punjab", Observations: 60, Source: "crops.csv"}},
			StructuredQuery{Locations: []string{"Punjab", "Atlantis"}}, descriptors)
		// 20 + 15 + (20+10)/2 + 10 + 10
		assert.Equal(t, 70, c.Score)
		assert.Contains(t, c.Descriptions()[0], "1 of 2 requested locations found")
	})

	t.Run("nothing found", func(t *testing.T) {
		c := Score(nil, nil, StructuredQuery{Locations: []string{"Atlantis"}}, nil)
		assert.GreaterOrEqual(t, c.Score, 0)
		assert.LessOrEqual(t, c.Score, MaxConfidence)
	})
}

func TestCitationTrackerFormat(t *testing.T) {
	tracker := NewCitationTracker(fixedClock)
	tracker.Add("rain.csv", "rainfall statistics for Punjab", 2, []string{"SUBDIVISION", "ANNUAL", "YEAR"})
	tracker.Add("crops.csv", "Maize production for Karnataka", 2, []string{"State", "Crop", "Production"})

	want := "[1] rain.csv | rainfall statistics for Punjab | points=2 | cols=[SUBDIVISION, ANNUAL, YEAR] | 2024-01-02 03:04:05\n" +
		"[2] crops.csv | Maize production for Karnataka | points=2 | cols=[State, Crop, Production] | 2024-01-02 03:04:05"
	assert.Equal(t, want, tracker.Format())
	assert.NotEmpty(t, tracker.Session())
}

func TestCitationTrackerIsolation(t *testing.T) {
	cols := []string{"a"}
	tracker := NewCitationTracker(func() time.Time { return fixedNow })
	tracker.Add("x.csv", "op", 1, cols)
	cols[0] = "mutated"

	entries := tracker.Entries()
	entries[0].Source = "changed"

	again := tracker.Entries()
	assert.Equal(t, "x.csv", again[0].Source)
	assert.Equal(t, []string{"a"}, again[0].Columns)
	assert.NotEqual(t, tracker.Session(), NewCitationTracker(nil).Session())
}

func TestCitationTrackerEmpty(t *testing.T) {
	var nilTracker *CitationTracker
	assert.NotPanics(t, func() { nilTracker.Add("x.csv", "op", 1, nil) })
	assert.Zero(t, nilTracker.Len())
	assert.Empty(t, nilTracker.Entries())
	assert.Empty(t, nilTracker.Session())
	assert.Equal(t, "No data sources used.", nilTracker.Format())
	assert.Equal(t, "No data sources used.", NewCitationTracker(nil).Format())
}
