package translator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

func TestGazetteerLocations(t *testing.T) {
	g := DefaultGazetteer()

	assert.Equal(t, []string{"Coastal Karnataka", "Karnataka"}, g.Locations("coastal karnataka and karnataka"))
	assert.Equal(t, []string{"Kerala", "Punjab"}, g.Locations("kerala, punjab and kerala again"))
	assert.Empty(t, g.Locations("nowhere in particular"))
}

func TestGazetteerKeywordBoundaries(t *testing.T) {
	g := DefaultGazetteer()

	precip, prod := g.DomainsIn("rainfall in the monsoons")
	assert.True(t, precip)
	assert.False(t, prod)

	precip, _ = g.DomainsIn("a brain teaser")
	assert.False(t, precip, "prefix keywords still need a word start")

	assert.Equal(t, engine.ActionCompare, g.Action("mostly harmless"))
	assert.Equal(t, engine.ActionTop, g.Action("ranking of states"))
}

func TestLoadGazetteer(t *testing.T) {
	g, err := LoadGazetteer(strings.NewReader(`
states: [atlantis]
crops:
  - {name: kelp, aliases: [kelp, seaweed]}
actions:
  - {action: bottom, keywords: [deepest]}
domains:
  production: [harvest*]
`))
	require.NoError(t, err)

	p := NewRuleParser(WithGazetteer(g))
	q := p.ParseText("deepest seaweed harvests in Atlantis")
	assert.Equal(t, engine.ActionBottom, q.Action)
	assert.Equal(t, []string{"Atlantis"}, q.Locations)
	assert.Equal(t, []string{"kelp"}, q.Crops)
	assert.True(t, q.NeedsProduction)
	assert.False(t, q.NeedsPrecipitation)

	_, err = LoadGazetteer(strings.NewReader("actions:\n  - {action: dance, keywords: [x]}\n"))
	assert.Error(t, err)

	_, err = LoadGazetteer(strings.NewReader("states: [a]\n"))
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]schema.DatasetDescriptor{
		{
			Name:        "rainfall.csv",
			Category:    schema.CategoryPrecipitation,
			RecordCount: 4116,
			YearSpan:    &schema.YearSpan{Min: 1901, Max: 2015},
			Columns: []schema.ColumnProfile{
				{Name: "SUBDIVISION", SampleValues: []string{"Kerala", "Punjab"}},
				{Name: "ANNUAL", Numeric: true},
			},
		},
		{Name: "crops.csv", Category: schema.CategoryProduction, RecordCount: 12},
	})

	assert.Contains(t, prompt, "1. rainfall.csv (precipitation, 4116 records, years 1901-2015)")
	assert.Contains(t, prompt, `- "SUBDIVISION" values: ["Kerala", "Punjab"]`)
	assert.Contains(t, prompt, `- "ANNUAL" numeric`)
	assert.Contains(t, prompt, "2. crops.csv (production, 12 records, snapshot: no year column)")
	assert.Contains(t, prompt, `"action": "compare|top|bottom|trend|correlate|recommend|identify"`)

	assert.NotContains(t, BuildPrompt(nil), "AVAILABLE DATASETS")
	assert.Equal(t, `Question: "why?"`, BuildUserPrompt("why?"))
}
