package translator

import (
	"fmt"
	"strings"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// PROMPT BUILDER: dataset-aware system prompt for the remote parser
// ============================================================================
// The model sees, per loaded dataset: name, category, record count, year
// span, and column names with a few sample values. Never rows.
// ============================================================================

const maxPromptSamples = 5

// BuildPrompt generates the system prompt for a remote parse.
func BuildPrompt(descriptors []schema.DatasetDescriptor) string {
	var b strings.Builder

	b.WriteString(`You are a query parser for an agricultural data assistant covering Indian rainfall and crop production.

YOUR ROLE:
Extract structured parameters from the user's question. You are a PARSER ONLY: do not answer the question and do not compute values.

`)

	if len(descriptors) > 0 {
		b.WriteString("AVAILABLE DATASETS:\n")
		for i, d := range descriptors {
			b.WriteString(describeDataset(i+1, d))
		}
		b.WriteString("\n")
	}

	b.WriteString(buildResponseFormat())
	b.WriteString(buildRules())
	b.WriteString("\nRespond with valid JSON only.\n")
	return b.String()
}

// BuildUserPrompt wraps the question for the user turn.
func BuildUserPrompt(question string) string {
	return fmt.Sprintf("Question: %q", question)
}

// ============================================================================
// SECTION BUILDERS
// ============================================================================

func describeDataset(n int, d schema.DatasetDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s (%s, %d records", n, d.Name, d.Category, d.RecordCount)
	if d.YearSpan != nil {
		fmt.Fprintf(&b, ", years %d-%d", d.YearSpan.Min, d.YearSpan.Max)
	} else if d.Category == schema.CategoryProduction {
		b.WriteString(", snapshot: no year column")
	}
	b.WriteString(")\n")

	for _, c := range d.Columns {
		fmt.Fprintf(&b, "   - %q", c.Name)
		if c.Numeric {
			b.WriteString(" numeric")
		}
		if len(c.SampleValues) > 0 {
			samples := c.SampleValues
			if len(samples) > maxPromptSamples {
				samples = samples[:maxPromptSamples]
			}
			fmt.Fprintf(&b, " values: [%s]", strings.Join(quotedValues(samples), ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func buildResponseFormat() string {
	actions := make([]string, len(engine.Actions))
	for i, a := range engine.Actions {
		actions[i] = string(a)
	}
	return fmt.Sprintf(`RESPONSE FORMAT:
{
  "action": "%s",
  "locations": ["region, state or district names, or \"all\""],
  "crops": ["crop names"],
  "years": [],
  "limit": 10,
  "time_period": "all|last_5|last_10|last_20|range",
  "metrics": ["rainfall", "production"]
}

`, strings.Join(actions, "|"))
}

func buildRules() string {
	return `RULES:
- "top", "highest", "most" → action "top"; "lowest", "least" → "bottom".
- "trend", "decade", "historical" → "trend"; "correlation", "impact", "influence" → "correlate".
- "recommend", "should", "suggest", "policy" → "recommend"; "which", "identify" → "identify".
- Otherwise use "compare".
- Use location names exactly as they appear in the dataset values when possible.
- If no location is named, use ["all"].
- Include "rainfall" in metrics for rainfall/precipitation/monsoon questions and "production" for crop questions; include both when unsure.
- years lists explicit 4-digit years only. Use time_period "range" for "from X to Y".
- Crop data has no year column: never promise crop trends over time.
`
}

func quotedValues(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
