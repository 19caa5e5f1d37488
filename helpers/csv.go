package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// CSV HELPER: Parses CSV bytes into a schema.Table
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, object store, HTTP).
// This helper turns the raw bytes into a Table; classification happens when
// the Table joins a Corpus.
// ============================================================================

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("helpers: CSV has no header row")

// ParseCSV parses CSV bytes into a Table called name. Ragged rows are
// padded or truncated to the header; malformed rows are skipped.
func ParseCSV(name string, data []byte) (*schema.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers of %s: %w", name, err)
	}
	if len(headers) == 0 || (len(headers) == 1 && headers[0] == "") {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	return schema.NewTable(name, headers, rows), nil
}
