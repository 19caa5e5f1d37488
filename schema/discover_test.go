package schema

import (
	"encoding/csv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// CLASSIFIER TESTS
// ============================================================================

// IMD-style subdivision rainfall
var rainfallCSV = []byte(`SUBDIVISION,YEAR,JAN,FEB,MAR,APR,MAY,JUN,JUL,AUG,SEP,OCT,NOV,DEC,ANNUAL
Punjab,2015,10,20,30,40,50,60,70,80,90,100,110,120,780
Punjab,2016,12,22,32,42,52,62,72,82,92,102,112,122,804
Kerala,2015,NA,40,60,80,100,600,700,500,300,200,100,50,2730
`)

// District crop snapshot
var cropCSV = []byte(`State,District,Crop,Season,Area,Production
Karnataka,Mysore,Maize,Kharif,1200,3400
Karnataka,Mandya,Rice,Kharif,2200,
Karnataka,Mysore,Ragi,Kharif,800,900
`)

func mustTable(t *testing.T, name string, data []byte) *Table {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return NewTable(name, records[0], records[1:])
}

func TestClassifyPrecipitation(t *testing.T) {
	tbl := mustTable(t, "rainfall.csv", rainfallCSV)
	d := Classify(tbl)

	assert.Equal(t, "rainfall.csv", d.Name)
	assert.Equal(t, CategoryPrecipitation, d.Category)
	assert.Equal(t, 3, d.RecordCount)
	require.NotNil(t, d.YearSpan)
	assert.Equal(t, YearSpan{Min: 2015, Max: 2016}, *d.YearSpan)
	// one NA among 3 rows × 15 columns
	assert.InDelta(t, 1.0/45.0, d.NullRatio, 1e-9)
	assert.Equal(t, "high", d.QualityTier())
}

func TestClassifyProduction(t *testing.T) {
	tbl := mustTable(t, "crops.csv", cropCSV)
	d := Classify(tbl)

	assert.Equal(t, CategoryProduction, d.Category)
	assert.Nil(t, d.YearSpan)
	assert.InDelta(t, 1.0/18.0, d.NullRatio, 1e-9)
	assert.Equal(t, "medium", d.QualityTier())

	var crop ColumnProfile
	for _, c := range d.Columns {
		if c.Name == "Crop" {
			crop = c
		}
	}
	assert.False(t, crop.Numeric)
	assert.Equal(t, []string{"Maize", "Ragi", "Rice"}, crop.SampleValues)
}

func TestClassifyAmbiguousFallback(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    Category
	}{
		{"month columns only", []string{"Place", "Jan", "Feb"}, CategoryPrecipitation},
		{"both with month columns", []string{"District", "JAN", "FEB", "ANNUAL"}, CategoryPrecipitation},
		{"neither with year column", []string{"Place", "Obs_Year", "Value"}, CategoryPrecipitation},
		{"neither without year column", []string{"Place", "Value"}, CategoryProduction},
		{"both without months or year", []string{"Rainfall", "Crop"}, CategoryProduction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(NewTable("t", tt.columns, nil))
			assert.Equal(t, tt.want, d.Category)
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	for _, data := range [][]byte{rainfallCSV, cropCSV} {
		tbl := mustTable(t, "t", data)
		first := Classify(tbl)
		second := Classify(tbl)
		assert.Equal(t, first, second)
		assert.Contains(t, []Category{CategoryPrecipitation, CategoryProduction}, first.Category)
	}
}

func TestClassifyNonNumericYearLeavesSpanAbsent(t *testing.T) {
	tbl := NewTable("t", []string{"Region", "Year", "Annual"}, [][]string{
		{"Punjab", "unknown", "700"},
		{"Punjab", "n/a", "650"},
	})
	d := Classify(tbl)
	assert.Nil(t, d.YearSpan)
	assert.Equal(t, 2, d.RecordCount)
}

func TestClassifyEmptyTable(t *testing.T) {
	d := Classify(NewTable("empty", []string{"Crop", "Production"}, nil))
	assert.Equal(t, CategoryProduction, d.Category)
	assert.Zero(t, d.NullRatio)
	assert.Zero(t, d.RecordCount)
}

func TestNewTablePadsShortRows(t *testing.T) {
	tbl := NewTable("t", []string{" A ", "B", "C"}, [][]string{{"1"}, {"1", "2", "3", "4"}})
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Columns())
	assert.Equal(t, "", tbl.Cell(0, "C"))
	assert.Equal(t, "3", tbl.Cell(1, "C"))
	assert.Equal(t, "", tbl.Cell(5, "A"))
	assert.Equal(t, "", tbl.Cell(0, "missing"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"600", 600, true},
		{" 1,234.5 ", 1234.5, true},
		{"-3", -3, true},
		{"NA", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	y, ok := ParseYear("2015.0")
	assert.True(t, ok)
	assert.Equal(t, 2015, y)
	_, ok = ParseYear("2015.5")
	assert.False(t, ok)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "state_name", toSnakeCase("State Name"))
	assert.Equal(t, "crop_year", toSnakeCase("Crop_Year"))
	assert.Equal(t, "area_hectare", toSnakeCase("areaHectare"))
}

func TestToDisplayName(t *testing.T) {
	assert.Equal(t, "Annual Rainfall", toDisplayName("ANNUAL_RAINFALL"))
	assert.Equal(t, "State Name", toDisplayName("state-name"))

	got := toDisplayName("ÉTAT_RÉGION")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "État Région", got)
}
