package schema

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// SCHEMA RESOLVER: Semantic role → column name
// ============================================================================
// Candidate keywords are data, not code: the defaults ship in keywords.yaml
// and callers may load their own table with LoadKeywords.
// ============================================================================

// Role names a semantic column role.
type Role string

const (
	RoleLocation   Role = "location"
	RoleYear       Role = "year"
	RoleAnnual     Role = "annual"
	RoleState      Role = "state"
	RoleDistrict   Role = "district"
	RoleCrop       Role = "crop"
	RoleProduction Role = "production"
	RoleArea       Role = "area"
)

// RoleSpec lists candidates in priority order. A column containing any
// Exclude keyword is never chosen for the role ("Crop_Year" is not a crop).
type RoleSpec struct {
	Keywords []string `yaml:"keywords"`
	Exclude  []string `yaml:"exclude"`
}

// Month pairs an abbreviation with the full name.
type Month struct {
	Abbr string `yaml:"abbr"`
	Name string `yaml:"name"`
}

// Keywords is the full keyword table used by the resolver and classifier.
type Keywords struct {
	Roles         map[Role]RoleSpec `yaml:"roles"`
	Precipitation []string          `yaml:"precipitation"`
	Production    []string          `yaml:"production"`
	Months        []Month           `yaml:"months"`
}

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

var (
	defaultKeywordsOnce sync.Once
	defaultKeywords     *Keywords
)

// DefaultKeywords returns the embedded keyword table.
func DefaultKeywords() *Keywords {
	defaultKeywordsOnce.Do(func() {
		kw, err := parseKeywords(defaultKeywordsYAML)
		if err != nil {
			panic(fmt.Sprintf("schema: embedded keywords.yaml: %v", err))
		}
		defaultKeywords = kw
	})
	return defaultKeywords
}

// LoadKeywords reads a keyword table in the keywords.yaml format.
func LoadKeywords(r io.Reader) (*Keywords, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	return parseKeywords(data)
}

func parseKeywords(data []byte) (*Keywords, error) {
	var kw Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	if len(kw.Roles) == 0 {
		return nil, fmt.Errorf("keywords: no roles defined")
	}
	for role, spec := range kw.Roles {
		spec.Keywords = lowerAll(spec.Keywords)
		spec.Exclude = lowerAll(spec.Exclude)
		kw.Roles[role] = spec
	}
	kw.Precipitation = lowerAll(kw.Precipitation)
	kw.Production = lowerAll(kw.Production)
	return &kw, nil
}

// Resolve returns the column of t serving role, or false if none matches.
func (k *Keywords) Resolve(t *Table, role Role) (string, bool) {
	spec, ok := k.Roles[role]
	if !ok {
		return "", false
	}
	return resolveColumn(t.columns, spec.Keywords, spec.Exclude)
}

// ResolveColumn applies the resolver rule to a bare header: for each
// candidate in priority order, the first column (in header order) whose
// lowercased name contains it wins.
func ResolveColumn(columns []string, candidates ...string) (string, bool) {
	return resolveColumn(columns, lowerAll(candidates), nil)
}

func resolveColumn(columns, candidates, exclude []string) (string, bool) {
	lowered := lowerAll(columns)
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		for i, col := range lowered {
			if strings.Contains(col, cand) && !containsAny(col, exclude) {
				return columns[i], true
			}
		}
	}
	return "", false
}

// MonthColumns returns the month columns of t in calendar order.
func (k *Keywords) MonthColumns(t *Table) []string {
	var out []string
	for _, m := range k.Months {
		for _, col := range t.columns {
			if k.isMonth(strings.ToLower(col), m) {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

func (k *Keywords) isMonth(col string, m Month) bool {
	if col == m.Abbr || col == m.Name {
		return true
	}
	// "sept" and similar truncations
	return len(col) > len(m.Abbr) && strings.HasPrefix(m.Name, col)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
