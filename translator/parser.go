package translator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
)

// ============================================================================
// RESPONSE PARSER: model text → RemoteQuery → merged StructuredQuery
// ============================================================================
// Models wrap JSON in prose, markdown fences, or <think> blocks, and emit
// numbers as strings. The decoder tolerates all of these.
// ============================================================================

// RemoteQuery is the JSON shape the remote model is asked for.
type RemoteQuery struct {
	Action     string    `json:"action"`
	Locations  []string  `json:"locations"`
	Crops      []string  `json:"crops"`
	Years      []flexInt `json:"years"`
	Limit      flexInt   `json:"limit"`
	TimePeriod string    `json:"time_period"`
	Metrics    []string  `json:"metrics"`
}

// flexInt accepts 5, 5.0, and "5".
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	*f = flexInt(int(v))
	return nil
}

// DecodeResponse extracts the RemoteQuery from model output.
func DecodeResponse(response string) (*RemoteQuery, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}
	var rq RemoteQuery
	if err := json.Unmarshal([]byte(raw), &rq); err != nil {
		return nil, fmt.Errorf("failed to parse parser response: %w (response: %.200s)", err, raw)
	}
	return &rq, nil
}

// Merge overlays the fields the model filled in onto base and recomputes
// the derived fields. Empty or unrecognised remote fields keep base values.
func Merge(base engine.StructuredQuery, rq *RemoteQuery) engine.StructuredQuery {
	q := base
	if rq == nil {
		return q
	}

	if a := engine.Action(strings.ToLower(strings.TrimSpace(rq.Action))); a.Valid() {
		q.Action = a
	}
	if locs := cleanList(rq.Locations, false); len(locs) > 0 {
		q.Locations = locs
	}
	if crops := cleanList(rq.Crops, true); len(crops) > 0 {
		q.Crops = crops
	}
	if len(rq.Years) > 0 {
		var years []int
		for _, y := range rq.Years {
			if isYear(int(y)) {
				years = append(years, int(y))
			}
		}
		if len(years) > 0 {
			q.Years = years
		}
	}
	if rq.Limit > 0 {
		q.Limit = int(rq.Limit)
	}
	if rq.TimePeriod != "" {
		q.TimeWindow = engine.ParseTimeWindow(rq.TimePeriod)
	}
	if len(rq.Metrics) > 0 {
		var precip, prod bool
		for _, m := range rq.Metrics {
			switch m = strings.ToLower(m); {
			case strings.Contains(m, "rain"), strings.Contains(m, "precip"):
				precip = true
			case strings.Contains(m, "produc"), strings.Contains(m, "crop"), strings.Contains(m, "yield"):
				prod = true
			}
		}
		if len(q.Crops) > 0 {
			prod = true
		}
		if precip == prod {
			precip, prod = true, true
		}
		q.NeedsPrecipitation, q.NeedsProduction = precip, prod
	}
	return Finalize(q)
}

func cleanList(in []string, lower bool) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out
}

// ============================================================================
// JSON EXTRACTION
// ============================================================================

var thinkTagPattern = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

// ExtractJSON returns the first balanced, valid JSON object in response.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	for start := strings.IndexByte(cleaned, '{'); start >= 0; {
		if obj, ok := balancedObject(cleaned[start:]); ok && json.Valid([]byte(obj)) {
			return obj, nil
		}
		next := strings.IndexByte(cleaned[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	trimmed := strings.TrimSpace(cleaned)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}
	return "", fmt.Errorf("no valid JSON object found in response")
}

// balancedObject returns the prefix of s up to the brace closing s[0].
func balancedObject(s string) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
