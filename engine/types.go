package engine

import (
	"strings"
)

// ============================================================================
// ENGINE TYPES: Structured query, per-entity statistics, outcomes
// ============================================================================
// StructuredQuery is the contract between a Parser and the engine. The rule
// based parser and the remote parser both produce it; the engine never sees
// free text.
// ============================================================================

// Action selects the analysis branch.
type Action string

const (
	ActionCompare   Action = "compare"
	ActionTop       Action = "top"
	ActionBottom    Action = "bottom"
	ActionTrend     Action = "trend"
	ActionCorrelate Action = "correlate"
	ActionRecommend Action = "recommend"
	ActionIdentify  Action = "identify"
)

// Actions lists every action in dispatch order.
var Actions = []Action{ActionCompare, ActionTop, ActionBottom, ActionTrend, ActionCorrelate, ActionRecommend, ActionIdentify}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// IsRanking reports whether a orders results by a primary metric.
func (a Action) IsRanking() bool { return a == ActionTop || a == ActionBottom }

// ParseAction maps a string onto an Action; unknown values become compare.
func ParseAction(s string) Action {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if a.Valid() {
		return a
	}
	return ActionCompare
}

// TimeWindow is a named relative temporal filter.
type TimeWindow string

const (
	WindowAll    TimeWindow = "all"
	WindowLast5  TimeWindow = "last_5"
	WindowLast10 TimeWindow = "last_10"
	WindowLast20 TimeWindow = "last_20"
	WindowRange  TimeWindow = "explicit_range"
)

// Span returns the number of trailing years a last_N window keeps.
func (w TimeWindow) Span() (int, bool) {
	switch w {
	case WindowLast5:
		return 5, true
	case WindowLast10:
		return 10, true
	case WindowLast20:
		return 20, true
	}
	return 0, false
}

// ParseTimeWindow maps a string onto a TimeWindow; unknown values become all.
// "range" is accepted as an alias of explicit_range.
func ParseTimeWindow(s string) TimeWindow {
	switch w := TimeWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowLast5, WindowLast10, WindowLast20, WindowRange:
		return w
	case "range":
		return WindowRange
	}
	return WindowAll
}

// AllLocations is the sentinel location list entry meaning "every location".
const AllLocations = "all"

// ============================================================================
// STRUCTURED QUERY
// ============================================================================

// StructuredQuery is built once per question and treated as immutable.
type StructuredQuery struct {
	Question           string     `json:"question"`
	Action             Action     `json:"action"`
	Locations          []string   `json:"locations"`
	Crops              []string   `json:"crops"`
	Years              []int      `json:"explicitYears,omitempty"`
	Limit              int        `json:"limit"`
	TimeWindow         TimeWindow `json:"timeWindow"`
	NeedsPrecipitation bool       `json:"needsPrecipitation"`
	NeedsProduction    bool       `json:"needsProduction"`

	Feasible            bool   `json:"feasible"`
	InfeasibilityReason string `json:"infeasibilityReason,omitempty"`
	SuggestedRewrite    string `json:"suggestedRewrite,omitempty"`
	Note                string `json:"note,omitempty"`
	ExpectedResult      string `json:"expectedResult,omitempty"`
}

// AllScope reports whether the query targets every location.
func (q StructuredQuery) AllScope() bool {
	return len(q.SpecificLocations()) == 0
}

// SpecificLocations returns the requested locations without the "all" sentinel.
func (q StructuredQuery) SpecificLocations() []string {
	var out []string
	for _, l := range q.Locations {
		if l != "" && !strings.EqualFold(l, AllLocations) {
			out = append(out, l)
		}
	}
	return out
}

// ============================================================================
// STATISTICS
// ============================================================================

// PrecipitationStat summarises annual rainfall for one resolved location of
// one dataset.
type PrecipitationStat struct {
	Key          string  `json:"key"`
	Location     string  `json:"location"`
	Query        string  `json:"query"`
	Mean         float64 `json:"mean"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Observations int     `json:"observations"`
	YearRange    string  `json:"yearRange"`
	Source       string  `json:"source"`
}

// ProductionStat summarises production for one location × crop of one dataset.
type ProductionStat struct {
	Key          string   `json:"key"`
	Location     string   `json:"location"`
	Crop         string   `json:"crop"`
	Query        string   `json:"query"`
	Total        float64  `json:"total"`
	Mean         float64  `json:"mean"`
	Area         *float64 `json:"area,omitempty"`
	Observations int      `json:"observations"`
	Source       string   `json:"source"`
}

// Productivity returns total/area when area is known and positive.
func (s ProductionStat) Productivity() (float64, bool) {
	if s.Area == nil || *s.Area <= 0 {
		return 0, false
	}
	return s.Total / *s.Area, true
}

// ============================================================================
// OUTCOMES: every attempted entity, successful or skipped
// ============================================================================

// OutcomeStatus classifies a per-entity attempt.
type OutcomeStatus string

const (
	OutcomeOK            OutcomeStatus = "ok"
	OutcomeNoMatch       OutcomeStatus = "no_match"
	OutcomeNoNumeric     OutcomeStatus = "no_numeric"
	OutcomeMissingColumn OutcomeStatus = "missing_column"
	OutcomeDuplicate     OutcomeStatus = "duplicate"
)

// Outcome records what happened to one (dataset, entity) attempt.
type Outcome struct {
	Dataset  string        `json:"dataset"`
	Location string        `json:"location,omitempty"`
	Crop     string        `json:"crop,omitempty"`
	Status   OutcomeStatus `json:"status"`
	Detail   string        `json:"detail,omitempty"`
}

// OK reports whether the attempt produced a statistic.
func (o Outcome) OK() bool { return o.Status == OutcomeOK }

// PrecipitationResult is the precipitation executor's output.
type PrecipitationResult struct {
	Stats    []PrecipitationStat `json:"stats"`
	Outcomes []Outcome           `json:"outcomes"`
}

// Lookup finds a statistic by key.
func (r PrecipitationResult) Lookup(key string) (PrecipitationStat, bool) {
	for _, s := range r.Stats {
		if s.Key == key {
			return s, true
		}
	}
	return PrecipitationStat{}, false
}

// Skipped returns the attempts that produced nothing.
func (r PrecipitationResult) Skipped() []Outcome { return skipped(r.Outcomes) }

// ProductionResult is the production executor's output.
type ProductionResult struct {
	Stats    []ProductionStat `json:"stats"`
	Outcomes []Outcome        `json:"outcomes"`
}

// Lookup finds a statistic by key.
func (r ProductionResult) Lookup(key string) (ProductionStat, bool) {
	for _, s := range r.Stats {
		if s.Key == key {
			return s, true
		}
	}
	return ProductionStat{}, false
}

// Skipped returns the attempts that produced nothing.
func (r ProductionResult) Skipped() []Outcome { return skipped(r.Outcomes) }

func skipped(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}
