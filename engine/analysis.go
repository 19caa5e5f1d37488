package engine

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// ANALYSIS DISPATCHER
// ============================================================================
// Routes on StructuredQuery.Action:
//
//   top / bottom  stable sort by mean rainfall / total production, truncate
//   compare       per-entity lists; cross-domain pairs when both domains hit
//   correlate     Pearson over matched pairs (≥3 pairs, else insufficient)
//   recommend     rainfall buckets + best-practice producer
//   trend         per-location spread of annual rainfall
//   identify      top/lowest producer (wettest/driest as rainfall fallback)
//
// No branch fails. Unknown actions are analysed as compare.
// ============================================================================

// RainfallClass buckets a mean annual rainfall figure.
type RainfallClass string

const (
	RainfallLow      RainfallClass = "low"
	RainfallModerate RainfallClass = "moderate"
	RainfallHigh     RainfallClass = "high"
)

// Cross-domain insight boundaries.
const (
	strongRainfallMM   = 1200
	strongProductionT  = 50000
	limitingRainfallMM = 800
	limitingProduction = 10000
	minCorrelatePairs  = 3
)

// RainfallEntry is a precipitation statistic with its bucket.
type RainfallEntry struct {
	PrecipitationStat
	Class RainfallClass `json:"class"`
}

// ProductionEntry is a production statistic with productivity when area is known.
type ProductionEntry struct {
	ProductionStat
	Productivity *float64 `json:"productivity,omitempty"`
}

// PairInsight is a cross-domain match with its qualitative reading.
type PairInsight struct {
	MatchedPair
	Insight string `json:"insight"`
}

// Correlation is the outcome of the correlate branch. Coefficient is nil
// when fewer than three pairs matched.
type Correlation struct {
	Pairs          int      `json:"pairs"`
	Coefficient    *float64 `json:"coefficient,omitempty"`
	Strength       string   `json:"strength,omitempty"`
	Direction      string   `json:"direction,omitempty"`
	Interpretation string   `json:"interpretation"`
}

// Sufficient reports whether a coefficient was computed.
func (c Correlation) Sufficient() bool { return c.Coefficient != nil }

// Recommendation is the fixed advice for one rainfall bucket.
type Recommendation struct {
	Class     RainfallClass `json:"class"`
	Locations []string      `json:"locations"`
	Advice    string        `json:"advice"`
}

// Trend is the spread of annual rainfall for one location.
type Trend struct {
	Key       string  `json:"key"`
	Location  string  `json:"location"`
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	RangePct  float64 `json:"rangePct"` // (max-min) as a percentage of mean
	YearRange string  `json:"yearRange"`
	Source    string  `json:"source"`
}

// Identification names the extremes of the available results.
type Identification struct {
	Top     *ProductionStat    `json:"top,omitempty"`
	Lowest  *ProductionStat    `json:"lowest,omitempty"`
	Wettest *PrecipitationStat `json:"wettest,omitempty"`
	Driest  *PrecipitationStat `json:"driest,omitempty"`
}

// Summary is the structured half of an answer. Which fields are set depends
// on Action.
type Summary struct {
	Action          Action            `json:"action"`
	Rainfall        []RainfallEntry   `json:"rainfall,omitempty"`
	Production      []ProductionEntry `json:"production,omitempty"`
	Pairs           []PairInsight     `json:"pairs,omitempty"`
	Correlation     *Correlation      `json:"correlation,omitempty"`
	Recommendations []Recommendation  `json:"recommendations,omitempty"`
	BestPractice    *ProductionStat   `json:"bestPractice,omitempty"`
	Trends          []Trend           `json:"trends,omitempty"`
	Identification  *Identification   `json:"identification,omitempty"`
	Notes           []string          `json:"notes,omitempty"`
}

// Analyze dispatches q.Action over the executor outputs.
func Analyze(q StructuredQuery, precip []PrecipitationStat, prod []ProductionStat, opts ...Option) Summary {
	cfg := applyOptions(opts)
	a := analyzer{cfg: cfg, q: q, precip: precip, prod: prod}

	action := q.Action
	if !action.Valid() {
		action = ActionCompare
	}
	s := Summary{Action: action}

	switch action {
	case ActionTop, ActionBottom:
		a.rank(&s, action == ActionTop)
	case ActionCorrelate:
		a.correlate(&s)
	case ActionRecommend:
		a.recommend(&s)
	case ActionTrend:
		a.trend(&s)
	case ActionIdentify:
		a.identify(&s)
	default:
		a.compare(&s)
	}

	cfg.Logger.Named("analysis").Debug("Analysis complete",
		zap.String("action", string(action)),
		zap.Int("rainfall", len(precip)),
		zap.Int("production", len(prod)),
		zap.Int("pairs", len(s.Pairs)))
	return s
}

type analyzer struct {
	cfg    *config
	q      StructuredQuery
	precip []PrecipitationStat
	prod   []ProductionStat
}

// Classify buckets a mean annual rainfall against the configured thresholds.
func (a analyzer) classify(mm float64) RainfallClass {
	switch {
	case mm < a.cfg.LowRainfallMM:
		return RainfallLow
	case mm > a.cfg.HighRainfallMM:
		return RainfallHigh
	default:
		return RainfallModerate
	}
}

func (a analyzer) rainfallEntries(stats []PrecipitationStat) []RainfallEntry {
	out := make([]RainfallEntry, len(stats))
	for i, s := range stats {
		out[i] = RainfallEntry{PrecipitationStat: s, Class: a.classify(s.Mean)}
	}
	return out
}

func productionEntries(stats []ProductionStat) []ProductionEntry {
	out := make([]ProductionEntry, len(stats))
	for i, s := range stats {
		out[i] = ProductionEntry{ProductionStat: s}
		if p, ok := s.Productivity(); ok {
			p = RoundTo2(p)
			out[i].Productivity = &p
		}
	}
	return out
}

func (a analyzer) rank(s *Summary, descending bool) {
	limit := a.q.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(a.precip) > 0 {
		s.Rainfall = a.rainfallEntries(RankPrecipitation(a.precip, descending, limit))
	}
	if len(a.prod) > 0 {
		s.Production = productionEntries(RankProduction(a.prod, descending, limit))
	}
}

func (a analyzer) compare(s *Summary) {
	s.Rainfall = a.rainfallEntries(a.precip)
	s.Production = productionEntries(a.prod)
	if len(a.precip) == 0 || len(a.prod) == 0 {
		return
	}

	for _, p := range Match(a.precip, a.prod) {
		s.Pairs = append(s.Pairs, PairInsight{MatchedPair: p, Insight: crossDomainInsight(p)})
	}
	if len(s.Pairs) == 0 {
		s.Notes = append(s.Notes, noMatchNote(a.precip, a.prod))
	}
}

func crossDomainInsight(p MatchedPair) string {
	mm, t := p.Precipitation.Mean, p.Production.Total
	switch {
	case mm > strongRainfallMM && t > strongProductionT:
		return "High rainfall supports strong production"
	case mm < limitingRainfallMM && t < limitingProduction:
		return "Low rainfall may be limiting production"
	default:
		return "Rainfall levels suitable for current production"
	}
}

func noMatchNote(precip []PrecipitationStat, prod []ProductionStat) string {
	var pl, cl []string
	for _, s := range truncate(precip, 3) {
		pl = append(pl, s.Location)
	}
	for _, s := range truncate(prod, 3) {
		cl = append(cl, s.Location)
	}
	return fmt.Sprintf("No direct geographic match between rainfall regions (%s) and production areas (%s)",
		strings.Join(pl, ", "), strings.Join(cl, ", "))
}

func (a analyzer) correlate(s *Summary) {
	pairs := Match(a.precip, a.prod)
	for _, p := range pairs {
		s.Pairs = append(s.Pairs, PairInsight{MatchedPair: p, Insight: crossDomainInsight(p)})
	}
	s.Correlation = correlation(pairs)
}

func correlation(pairs []MatchedPair) *Correlation {
	c := &Correlation{Pairs: len(pairs)}
	if len(pairs) < minCorrelatePairs {
		c.Interpretation = fmt.Sprintf(
			"Insufficient matched data points (%d) for correlation analysis. At least %d location pairs are needed.",
			len(pairs), minCorrelatePairs)
		return c
	}

	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i] = p.Precipitation.Mean
		ys[i] = p.Production.Total
	}

	r, ok := Pearson(xs, ys)
	if !ok {
		zero := 0.0
		c.Coefficient = &zero
		c.Strength = "none"
		c.Direction = "undefined"
		c.Interpretation = "One of the series is constant across the matched locations, so no linear relationship can be measured."
		return c
	}

	r = RoundTo2(r)
	c.Coefficient = &r
	switch abs := math.Abs(r); {
	case abs > 0.7:
		c.Strength = "strong"
	case abs > 0.4:
		c.Strength = "moderate"
	default:
		c.Strength = "weak"
	}
	switch {
	case r > 0:
		c.Direction = "positive"
	case r < 0:
		c.Direction = "negative"
	default:
		c.Direction = "none"
	}

	switch {
	case r > 0.5:
		c.Interpretation = "Higher rainfall is associated with higher crop production, suggesting water availability is a key limiting factor."
	case r < -0.5:
		c.Interpretation = "Higher rainfall is associated with lower production, possibly indicating flooding issues or waterlogging."
	default:
		c.Interpretation = "The relationship is not strongly linear; other factors (soil quality, farming practices, crop variety) likely play significant roles."
	}
	return c
}

var advice = map[RainfallClass]string{
	RainfallLow:      "Promote drought-resistant crops such as millets (ragi, jowar) and pulses; invest in drip irrigation and rainwater harvesting.",
	RainfallModerate: "Support diverse crop cultivation with balanced water management and crop rotation.",
	RainfallHigh:     "Favour water-intensive crops like paddy; invest in drainage and flood management.",
}

func (a analyzer) recommend(s *Summary) {
	s.Rainfall = a.rainfallEntries(a.precip)

	buckets := make(map[RainfallClass][]string)
	for _, e := range s.Rainfall {
		buckets[e.Class] = append(buckets[e.Class], e.Location)
	}
	for _, class := range []RainfallClass{RainfallLow, RainfallModerate, RainfallHigh} {
		if locs := buckets[class]; len(locs) > 0 {
			s.Recommendations = append(s.Recommendations, Recommendation{Class: class, Locations: locs, Advice: advice[class]})
		}
	}

	if best := RankProduction(a.prod, true, 1); len(best) == 1 {
		s.BestPractice = &best[0]
	}
}

func (a analyzer) trend(s *Summary) {
	if len(a.precip) == 0 {
		if len(a.prod) > 0 {
			s.Production = productionEntries(a.prod)
			s.Notes = append(s.Notes, "Trend analysis requires time-series data. Crop datasets contain snapshot data without temporal information, so only current production levels are shown.")
		}
		return
	}

	for _, p := range a.precip {
		t := Trend{Key: p.Key, Location: p.Location, Mean: p.Mean, Min: p.Min, Max: p.Max, YearRange: p.YearRange, Source: p.Source}
		if p.Mean != 0 {
			t.RangePct = RoundTo2((p.Max - p.Min) / p.Mean * 100)
		}
		s.Trends = append(s.Trends, t)
	}
	if len(a.prod) > 0 {
		s.Production = productionEntries(a.prod)
		s.Notes = append(s.Notes, "Crop production figures are a single snapshot and carry no temporal trend.")
	}
}

func (a analyzer) identify(s *Summary) {
	id := &Identification{}
	switch {
	case len(a.prod) > 0:
		top := RankProduction(a.prod, true, 1)[0]
		id.Top = &top
		if len(a.prod) > 1 {
			low := RankProduction(a.prod, false, 1)[0]
			id.Lowest = &low
		}
	case len(a.precip) > 0:
		wet := RankPrecipitation(a.precip, true, 1)[0]
		id.Wettest = &wet
		if len(a.precip) > 1 {
			dry := RankPrecipitation(a.precip, false, 1)[0]
			id.Driest = &dry
		}
	default:
		return
	}
	s.Identification = id
}
