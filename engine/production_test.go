package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// PRODUCTION EXECUTOR TESTS
// ============================================================================

func TestQueryProductionLocationAndCrop(t *testing.T) {
	ds := mustDataset(t, "crops.csv", karnatakaMaizeCSV)
	tracker := NewCitationTracker(fixedClock)

	res := QueryProduction(productionQuery([]string{"karnataka"}, "maize"), []*schema.Dataset{ds}, tracker)

	require.Len(t, res.Stats, 1)
	s := res.Stats[0]
	assert.Equal(t, "Karnataka_Maize", s.Key)
	assert.Equal(t, "Karnataka", s.Location)
	assert.Equal(t, "Maize", s.Crop)
	assert.InDelta(t, 300.0, s.Total, 1e-9)
	assert.InDelta(t, 150.0, s.Mean, 1e-9)
	assert.Equal(t, 2, s.Observations)
	assert.Nil(t, s.Area)

	require.Equal(t, 1, tracker.Len())
	c := tracker.Entries()[0]
	assert.Equal(t, "Maize production for Karnataka", c.Operation)
	assert.Equal(t, []string{"State", "Crop", "Production"}, c.Columns)
}

func TestQueryProductionDistrictFallbackAndCropSampling(t *testing.T) {
	ds := mustDataset(t, "districts.csv", districtCropCSV)

	res := QueryProduction(productionQuery([]string{"Mysore"}), []*schema.Dataset{ds}, nil)

	require.Len(t, res.Stats, 1)
	s := res.Stats[0]
	assert.Equal(t, "Mysore", s.Location)
	assert.Equal(t, "Maize", s.Crop)
	assert.InDelta(t, 30000.0, s.Total, 1e-9)
	require.NotNil(t, s.Area)
	assert.InDelta(t, 1000.0, *s.Area, 1e-9)
	p, ok := s.Productivity()
	require.True(t, ok)
	assert.InDelta(t, 30.0, p, 1e-9)

	// Ragi has no numeric production
	skipped := res.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, OutcomeNoNumeric, skipped[0].Status)
	assert.Equal(t, "Ragi", skipped[0].Crop)
}

func TestQueryProductionAllLocations(t *testing.T) {
	ds := mustDataset(t, "districts.csv", districtCropCSV)

	res := QueryProduction(productionQuery([]string{AllLocations}), []*schema.Dataset{ds}, nil)

	require.Len(t, res.Stats, 2)
	assert.Equal(t, "Karnataka_Maize", res.Stats[0].Key)
	assert.InDelta(t, 60000.0, res.Stats[0].Total, 1e-9)
	assert.Equal(t, 2, res.Stats[0].Observations)
	require.NotNil(t, res.Stats[0].Area)
	assert.InDelta(t, 3000.0, *res.Stats[0].Area, 1e-9)
	assert.Equal(t, "Punjab_Wheat", res.Stats[1].Key)
}

func TestQueryProductionCropSampleLimit(t *testing.T) {
	ds := mustDataset(t, "districts.csv", districtCropCSV)

	res := QueryProduction(productionQuery([]string{"Karnataka"}), []*schema.Dataset{ds}, nil, WithCropSampleLimit(1))

	require.Len(t, res.Stats, 1)
	assert.Equal(t, "Maize", res.Stats[0].Crop)
	assert.Empty(t, res.Skipped())
}

func TestQueryProductionWithoutCropColumn(t *testing.T) {
	ds := mustDataset(t, "rice_production.csv", []byte("State,Production\nOdisha,500\nOdisha,700\n"))

	t.Run("no crop requested", func(t *testing.T) {
		res := QueryProduction(productionQuery([]string{"Odisha"}), []*schema.Dataset{ds}, nil)
		require.Len(t, res.Stats, 1)
		assert.Equal(t, "All Crops", res.Stats[0].Crop)
		assert.InDelta(t, 1200.0, res.Stats[0].Total, 1e-9)
	})

	t.Run("requested crop matches on location alone", func(t *testing.T) {
		res := QueryProduction(productionQuery([]string{"Odisha"}, "rice"), []*schema.Dataset{ds}, nil)
		require.Len(t, res.Stats, 1)
		assert.Equal(t, "Odisha_Rice", res.Stats[0].Key)
		assert.InDelta(t, 1200.0, res.Stats[0].Total, 1e-9)
	})

	t.Run("crop absent from the file name", func(t *testing.T) {
		crops := mustDataset(t, "karnataka_crops.csv", []byte("State,Production\nKarnataka,100\nKarnataka,200\n"))
		res := QueryProduction(productionQuery([]string{"Karnataka"}, "maize"), []*schema.Dataset{crops}, nil)
		require.Len(t, res.Stats, 1)
		assert.Equal(t, "Karnataka_Maize", res.Stats[0].Key)
		assert.InDelta(t, 300.0, res.Stats[0].Total, 1e-9)
		assert.InDelta(t, 150.0, res.Stats[0].Mean, 1e-9)
		assert.Empty(t, res.Skipped())
	})
}

func TestQueryProductionMissingProductionColumn(t *testing.T) {
	ds := mustDataset(t, "areas.csv", []byte("State,Crop,Area\nOdisha,Rice,10\n"))

	res := QueryProduction(productionQuery([]string{"Odisha"}), []*schema.Dataset{ds}, nil)

	assert.Empty(t, res.Stats)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, OutcomeMissingColumn, res.Outcomes[0].Status)
	assert.Contains(t, res.Outcomes[0].Detail, "production")
}
