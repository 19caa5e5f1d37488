package engine

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// SHARED FIXTURES
// ============================================================================

var punjabRainfallCSV = []byte(`SUBDIVISION,YEAR,ANNUAL
Punjab,2015,600
Punjab,2016,700
`)

var monthlyRainfallCSV = []byte(`SUBDIVISION,YEAR,JAN,FEB,MAR,APR,MAY,JUN,JUL,AUG,SEP,OCT,NOV,DEC
Vidarbha,2015,10,20,30,40,50,60,70,80,90,100,110,120
`)

var decadeRainfallCSV = []byte(`SUBDIVISION,YEAR,ANNUAL
Kerala,2010,3000
Kerala,2011,3100
Kerala,2012,2900
Kerala,2013,2800
Kerala,2014,3200
Kerala,2015,3300
Kerala,2016,NA
Punjab,2015,600
Punjab,2016,700
Coastal Karnataka,2015,3400
Coastal Karnataka,2016,3600
`)

var karnatakaMaizeCSV = []byte(`State,Crop,Production
Karnataka,Maize,100
Karnataka,Maize,200
`)

var districtCropCSV = []byte(`State_Name,District_Name,Crop_Year,Season,Crop,Area,Production
Karnataka,Mysore,2014,Kharif,Maize,1000,30000
Karnataka,Mysore,2014,Kharif,Ragi,500,
Karnataka,Mandya,2014,Kharif,Maize,2000,30000
Punjab,Ludhiana,2014,Rabi,Wheat,4000,9000
`)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func mustTable(t *testing.T, name string, data []byte) *schema.Table {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return schema.NewTable(name, records[0], records[1:])
}

func mustDataset(t *testing.T, name string, data []byte) *schema.Dataset {
	t.Helper()
	tbl := mustTable(t, name, data)
	return &schema.Dataset{Table: tbl, Descriptor: schema.Classify(tbl)}
}

func mustCorpus(t *testing.T, tables ...*schema.Table) *schema.Corpus {
	t.Helper()
	c := schema.NewCorpus(nil, tables...)
	require.Equal(t, len(tables), c.Len())
	return c
}

func rainfallQuery(locations ...string) StructuredQuery {
	return StructuredQuery{
		Action:             ActionCompare,
		Locations:          locations,
		TimeWindow:         WindowAll,
		Limit:              10,
		NeedsPrecipitation: true,
		Feasible:           true,
	}
}

func productionQuery(locations []string, crops ...string) StructuredQuery {
	return StructuredQuery{
		Action:          ActionCompare,
		Locations:       locations,
		Crops:           crops,
		TimeWindow:      WindowAll,
		Limit:           10,
		NeedsProduction: true,
		Feasible:        true,
	}
}
