package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveColumnFirstInDeclaredOrder(t *testing.T) {
	col, ok := ResolveColumn([]string{"Year", "YEAR_x"}, "year")
	require.True(t, ok)
	assert.Equal(t, "Year", col)
}

func TestResolveColumnCandidatePriority(t *testing.T) {
	columns := []string{"Region", "State_Name", "SUBDIVISION"}

	// "subdiv" outranks "state" even though State_Name comes first
	col, ok := ResolveColumn(columns, "subdiv", "state", "region")
	require.True(t, ok)
	assert.Equal(t, "SUBDIVISION", col)

	_, ok = ResolveColumn(columns, "crop")
	assert.False(t, ok)
}

func TestKeywordsResolveRoles(t *testing.T) {
	kw := DefaultKeywords()
	tbl := NewTable("crops", []string{"State_Name", "District_Name", "Crop_Year", "Season", "Crop", "Area", "Production"}, nil)

	tests := []struct {
		role Role
		want string
	}{
		{RoleState, "State_Name"},
		{RoleDistrict, "District_Name"},
		{RoleYear, "Crop_Year"},
		{RoleCrop, "Crop"},
		{RoleArea, "Area"},
		{RoleProduction, "Production"},
	}
	for _, tt := range tests {
		got, ok := kw.Resolve(tbl, tt.role)
		require.True(t, ok, tt.role)
		assert.Equal(t, tt.want, got, tt.role)
	}

	_, ok := kw.Resolve(tbl, RoleAnnual)
	assert.False(t, ok)
	_, ok = kw.Resolve(tbl, Role("unknown"))
	assert.False(t, ok)
}

func TestMonthColumnsCalendarOrder(t *testing.T) {
	tbl := NewTable("r", []string{"SUBDIVISION", "FEB", "Jan", "SEPT", "ANNUAL"}, nil)
	assert.Equal(t, []string{"Jan", "FEB", "SEPT"}, DefaultKeywords().MonthColumns(tbl))
}

func TestLoadKeywords(t *testing.T) {
	kw, err := LoadKeywords(strings.NewReader(`
roles:
  location:
    keywords: [Zone]
precipitation: [Rain]
production: [Harvest]
`))
	require.NoError(t, err)

	tbl := NewTable("t", []string{"ZONE_ID", "Harvest_t"}, nil)
	col, ok := kw.Resolve(tbl, RoleLocation)
	require.True(t, ok)
	assert.Equal(t, "ZONE_ID", col)
	assert.Equal(t, CategoryProduction, kw.Categorize(tbl))

	_, err = LoadKeywords(strings.NewReader("precipitation: [rain]\n"))
	assert.Error(t, err)
}

func TestNewCorpusPartitionsAndDedupes(t *testing.T) {
	rain := mustTable(t, "data.csv", rainfallCSV)
	crops := mustTable(t, "data.csv", cropCSV)

	c := NewCorpus(zap.NewNop(), rain, nil, crops, NewTable("blank", nil, nil))
	require.Equal(t, 2, c.Len())

	require.Len(t, c.Precipitation(), 1)
	require.Len(t, c.Production(), 1)
	assert.Equal(t, "data.csv", c.Precipitation()[0].Name())
	assert.Equal(t, "data.csv#2", c.Production()[0].Name())

	d, ok := c.Descriptor("data.csv#2")
	require.True(t, ok)
	assert.Equal(t, CategoryProduction, d.Category)
	assert.Len(t, c.Descriptors(), 2)
}
