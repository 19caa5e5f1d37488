package translator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
)

// ============================================================================
// RULE PARSER: deterministic keyword parsing
// ============================================================================
// Steps, all over the lowercased question:
//   1. locations   gazetteer places, else ["all"]
//   2. crops       crop aliases → canonical names
//   3. action      first keyword category in priority order, else compare
//   4. limit       first integer that is not a year; 5 for top/bottom, else 10
//   5. years       every 1900–2099 token
//   6. window      "last/past N years", "decade", "from … to", "between … and"
//   7. domains     keyword presence; neither or both → both
//   8. feasibility trend over production alone is infeasible
// ============================================================================

const (
	defaultRankingLimit = 5
	defaultLimit        = 10

	bothDomainsTrendNote    = "Rainfall is shown as a time series; crop figures are a single snapshot and are shown alongside it."
	bothDomainsTrendRewrite = "Compare historical rainfall trends with current crop production levels"
)

var (
	numberPattern     = regexp.MustCompile(`\b\d+\b`)
	yearPattern       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	lastYearsPattern  = regexp.MustCompile(`\b(?:last|past|previous)\s+(\d+)\s+years?\b`)
	decadePattern     = regexp.MustCompile(`\b(?:last|past|previous)\s+decade\b`)
	fromToPattern     = regexp.MustCompile(`\bfrom\b.+\bto\b`)
	betweenAndPattern = regexp.MustCompile(`\bbetween\b.+\band\b`)
)

// RuleParser parses questions with the gazetteer alone. It never fails and
// is safe for concurrent use.
type RuleParser struct {
	gazetteer *Gazetteer
	logger    *zap.Logger
}

// NewRuleParser builds a rule parser.
func NewRuleParser(opts ...Option) *RuleParser {
	o := applyOptions(opts)
	return &RuleParser{gazetteer: o.gazetteer, logger: o.logger.Named("parser")}
}

// Parse implements Parser.
func (p *RuleParser) Parse(_ context.Context, question string) (engine.StructuredQuery, error) {
	return p.ParseText(question), nil
}

// ParseText is Parse without a context.
func (p *RuleParser) ParseText(question string) engine.StructuredQuery {
	question = strings.TrimSpace(question)
	lower := strings.ToLower(question)
	g := p.gazetteer

	q := engine.StructuredQuery{
		Question:   question,
		Locations:  g.Locations(lower),
		Crops:      g.CropsIn(lower),
		Action:     g.Action(lower),
		Years:      explicitYears(lower),
		TimeWindow: timeWindow(lower),
	}
	if len(q.Locations) == 0 {
		q.Locations = []string{engine.AllLocations}
	}
	q.Limit = limit(lower, q.Action)

	precip, prod := g.DomainsIn(lower)
	if len(q.Crops) > 0 {
		prod = true
	}
	if precip == prod {
		precip, prod = true, true
	}
	q.NeedsPrecipitation, q.NeedsProduction = precip, prod

	q = Finalize(q)
	p.logger.Debug("Rule parse",
		zap.String("action", string(q.Action)),
		zap.Strings("locations", q.Locations),
		zap.Strings("crops", q.Crops),
		zap.String("window", string(q.TimeWindow)),
		zap.Bool("feasible", q.Feasible))
	return q
}

// Finalize recomputes the derived fields of q (feasibility, note, rewrite,
// expected result) from its primary fields.
func Finalize(q engine.StructuredQuery) engine.StructuredQuery {
	q.Feasible = true
	q.InfeasibilityReason, q.SuggestedRewrite, q.Note = "", "", ""

	if q.Action == engine.ActionTrend {
		switch {
		case q.NeedsProduction && !q.NeedsPrecipitation:
			q.Feasible = false
			q.InfeasibilityReason = engine.SnapshotReason
			q.SuggestedRewrite = engine.SnapshotRewrite
		case q.NeedsProduction && q.NeedsPrecipitation:
			q.Note = bothDomainsTrendNote
			q.SuggestedRewrite = bothDomainsTrendRewrite
		}
	}
	q.ExpectedResult = expectedResult(q)
	return q
}

func explicitYears(lower string) []int {
	var years []int
	for _, m := range yearPattern.FindAllString(lower, -1) {
		y, _ := strconv.Atoi(m)
		years = append(years, y)
	}
	return years
}

func isYear(n int) bool { return n >= 1900 && n <= 2099 }

func limit(lower string, action engine.Action) int {
	for _, m := range numberPattern.FindAllString(lower, -1) {
		n, err := strconv.Atoi(m)
		if err == nil && n > 0 && !isYear(n) {
			return n
		}
	}
	if action.IsRanking() {
		return defaultRankingLimit
	}
	return defaultLimit
}

func timeWindow(lower string) engine.TimeWindow {
	if m := lastYearsPattern.FindStringSubmatch(lower); m != nil {
		switch m[1] {
		case "5":
			return engine.WindowLast5
		case "10":
			return engine.WindowLast10
		case "20":
			return engine.WindowLast20
		}
		return engine.WindowAll
	}
	switch {
	case decadePattern.MatchString(lower):
		return engine.WindowLast10
	case fromToPattern.MatchString(lower), betweenAndPattern.MatchString(lower):
		return engine.WindowRange
	}
	return engine.WindowAll
}

func expectedResult(q engine.StructuredQuery) string {
	var result string
	switch q.Action {
	case engine.ActionTop:
		result = "Rankings of top performers"
	case engine.ActionBottom:
		result = "Rankings of bottom performers"
	case engine.ActionCorrelate:
		result = "Correlation analysis between rainfall and production"
	case engine.ActionTrend:
		result = "Trend analysis over time"
	case engine.ActionRecommend:
		result = "Data-backed policy recommendations"
	case engine.ActionIdentify:
		result = "Identification of leading and lagging producers"
	default:
		result = "Comparative analysis"
	}
	var data []string
	if q.NeedsPrecipitation {
		data = append(data, "rainfall statistics")
	}
	if q.NeedsProduction {
		data = append(data, "crop production data")
	}
	if len(data) > 0 {
		result += " with " + strings.Join(data, " and ")
	}
	if locs := q.SpecificLocations(); len(locs) > 0 {
		if len(locs) > 3 {
			locs = locs[:3]
		}
		result += fmt.Sprintf(" for %s", strings.Join(locs, ", "))
	}
	return result
}
