package translator

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
)

//go:embed gazetteer.yaml
var gazetteerYAML []byte

// CropAlias maps the words for a crop onto its canonical name.
type CropAlias struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// ActionKeywords lists the words that select an action.
type ActionKeywords struct {
	Action   engine.Action `yaml:"action"`
	Keywords []string      `yaml:"keywords"`
}

// Gazetteer is the keyword data the rule parser matches questions against.
type Gazetteer struct {
	Subdivisions []string         `yaml:"subdivisions"`
	Districts    []string         `yaml:"districts"`
	States       []string         `yaml:"states"`
	Crops        []CropAlias      `yaml:"crops"`
	Actions      []ActionKeywords `yaml:"actions"`
	Domains      struct {
		Precipitation []string `yaml:"precipitation"`
		Production    []string `yaml:"production"`
	} `yaml:"domains"`

	places  []placePattern
	crops   []cropPattern
	actions []actionPattern
	precip  []*regexp.Regexp
	prod    []*regexp.Regexp
}

type placePattern struct {
	name string
	re   *regexp.Regexp
}

type cropPattern struct {
	name string
	res  []*regexp.Regexp
}

type actionPattern struct {
	action engine.Action
	res    []*regexp.Regexp
}

var (
	defaultGazetteer     *Gazetteer
	defaultGazetteerOnce sync.Once
)

// DefaultGazetteer returns the embedded gazetteer. It panics if the embedded
// file is malformed, which is a build defect.
func DefaultGazetteer() *Gazetteer {
	defaultGazetteerOnce.Do(func() {
		g, err := parseGazetteer(gazetteerYAML)
		if err != nil {
			panic(fmt.Sprintf("translator: embedded gazetteer: %v", err))
		}
		defaultGazetteer = g
	})
	return defaultGazetteer
}

// LoadGazetteer reads a gazetteer in the embedded YAML layout.
func LoadGazetteer(r io.Reader) (*Gazetteer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	return parseGazetteer(data)
}

func parseGazetteer(data []byte) (*Gazetteer, error) {
	var g Gazetteer
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}
	if len(g.Actions) == 0 {
		return nil, fmt.Errorf("gazetteer defines no actions")
	}
	for _, a := range g.Actions {
		if !a.Action.Valid() {
			return nil, fmt.Errorf("gazetteer: unknown action %q", a.Action)
		}
	}
	g.compile()
	return &g, nil
}

func (g *Gazetteer) compile() {
	seen := make(map[string]bool)
	for _, list := range [][]string{g.Subdivisions, g.Districts, g.States} {
		for _, name := range list {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			g.places = append(g.places, placePattern{name: name, re: keywordPattern(name)})
		}
	}
	// longest first so "coastal karnataka" claims its span before "karnataka"
	sort.SliceStable(g.places, func(i, j int) bool { return len(g.places[i].name) > len(g.places[j].name) })

	for _, c := range g.Crops {
		g.crops = append(g.crops, cropPattern{name: strings.ToLower(c.Name), res: keywordPatterns(c.Aliases)})
	}
	for _, a := range g.Actions {
		g.actions = append(g.actions, actionPattern{action: a.Action, res: keywordPatterns(a.Keywords)})
	}
	g.precip = keywordPatterns(g.Domains.Precipitation)
	g.prod = keywordPatterns(g.Domains.Production)
}

// keywordPattern matches kw on word boundaries; a trailing * makes it a
// word-prefix match.
func keywordPattern(kw string) *regexp.Regexp {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if prefix, ok := strings.CutSuffix(kw, "*"); ok {
		return regexp.MustCompile(`\b` + regexp.QuoteMeta(prefix))
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
}

func keywordPatterns(kws []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(kws))
	for _, kw := range kws {
		if strings.TrimSpace(kw) != "" {
			out = append(out, keywordPattern(kw))
		}
	}
	return out
}

func anyMatch(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Locations returns the places named in lower, title-cased, in the order
// they appear. A name inside a longer matched name is not reported.
func (g *Gazetteer) Locations(lower string) []string {
	type hit struct {
		pos  int
		name string
	}
	masked := []byte(lower)
	var hits []hit
	for _, p := range g.places {
		for _, loc := range p.re.FindAllIndex(masked, -1) {
			hits = append(hits, hit{pos: loc[0], name: p.name})
			for i := loc[0]; i < loc[1]; i++ {
				masked[i] = ' '
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	title := cases.Title(language.English)
	seen := make(map[string]bool)
	var out []string
	for _, h := range hits {
		if !seen[h.name] {
			seen[h.name] = true
			out = append(out, title.String(h.name))
		}
	}
	return out
}

// CropsIn returns the canonical names of the crops mentioned in lower.
func (g *Gazetteer) CropsIn(lower string) []string {
	var out []string
	for _, c := range g.crops {
		if anyMatch(c.res, lower) {
			out = append(out, c.name)
		}
	}
	return out
}

// Action returns the first action, in priority order, with a keyword hit.
func (g *Gazetteer) Action(lower string) engine.Action {
	for _, a := range g.actions {
		if anyMatch(a.res, lower) {
			return a.action
		}
	}
	return engine.ActionCompare
}

// DomainsIn reports which data domains lower mentions.
func (g *Gazetteer) DomainsIn(lower string) (precipitation, production bool) {
	return anyMatch(g.precip, lower), anyMatch(g.prod, lower)
}
