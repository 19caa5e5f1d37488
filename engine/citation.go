package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Citation records one dataset access that contributed to an answer.
type Citation struct {
	Source       string    `json:"source"`
	Operation    string    `json:"operation"`
	Observations int       `json:"observations"`
	Columns      []string  `json:"columns"`
	Timestamp    time.Time `json:"timestamp"`
}

// CitationTracker is an append-only provenance log scoped to one query
// session. Create a fresh tracker per question; never share one across
// questions.
type CitationTracker struct {
	mu      sync.Mutex
	session string
	now     func() time.Time
	entries []Citation
}

// NewCitationTracker starts an empty session log. now may be nil.
func NewCitationTracker(now func() time.Time) *CitationTracker {
	if now == nil {
		now = time.Now
	}
	return &CitationTracker{session: uuid.NewString(), now: now}
}

// Session identifies the query session the entries belong to.
func (t *CitationTracker) Session() string {
	if t == nil {
		return ""
	}
	return t.session
}

// Add appends an entry stamped with the capture time. A nil tracker
// discards it and reads as empty.
func (t *CitationTracker) Add(source, operation string, observations int, columns []string) {
	if t == nil {
		return
	}
	cols := make([]string, len(columns))
	copy(cols, columns)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Citation{
		Source:       source,
		Operation:    operation,
		Observations: observations,
		Columns:      cols,
		Timestamp:    t.now(),
	})
}

// Len returns the number of entries.
func (t *CitationTracker) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Entries returns a copy of the log in insertion order.
func (t *CitationTracker) Entries() []Citation {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Citation, len(t.entries))
	copy(out, t.entries)
	return out
}

// Format renders the log 1-indexed in insertion order.
func (t *CitationTracker) Format() string {
	return FormatCitations(t.Entries())
}

// FormatCitations renders entries as
// "[1] source | operation | points=N | cols=[a, b] | 2006-01-02 15:04:05".
func FormatCitations(entries []Citation) string {
	if len(entries) == 0 {
		return "No data sources used."
	}
	lines := make([]string, len(entries))
	for i, c := range entries {
		lines[i] = fmt.Sprintf("[%d] %s | %s | points=%d | cols=[%s] | %s",
			i+1, c.Source, c.Operation, c.Observations,
			strings.Join(c.Columns, ", "), c.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return strings.Join(lines, "\n")
}
