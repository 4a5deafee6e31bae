package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/logging"
)

// CSVExtractor reads tabular glossary files. The header row is
// case/space-normalized, the phrase and definition columns are located by
// the ordered keyword tables, and every other column is carried as
// metadata.
type CSVExtractor struct {
	// RequireDefinition makes a missing definition column a hard failure
	// for the file instead of degrading to empty definitions.
	RequireDefinition bool
}

// Format implements Extractor.
func (e *CSVExtractor) Format() string { return "csv" }

// Extract implements Extractor.
func (e *CSVExtractor) Extract(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewProcessError(path, "csv", "cannot open file", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewProcessError(path, "csv", "invalid CSV syntax", errors.WrapParse("csv", path, err))
	}
	if len(rows) == 0 {
		return nil, errors.NewProcessError(path, "csv", "file has no header row", nil)
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	phraseCol := findColumn(header, PhraseColumnKeywords)
	if phraseCol < 0 {
		return nil, errors.NewProcessError(path, "csv",
			fmt.Sprintf("required phrase column not found, available: %v", header), nil)
	}

	definitionCol := findColumn(header, DefinitionColumnKeywords)
	if definitionCol < 0 && e.RequireDefinition {
		return nil, errors.NewProcessError(path, "csv",
			fmt.Sprintf("required definition column not found, available: %v", header), nil)
	}

	var records []Record
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			logging.Debug().Str("file", path).Int("row", i+2).Msg("Skipping malformed CSV row")
			continue
		}

		phrase := strings.TrimSpace(row[phraseCol])
		definition := ""
		if definitionCol >= 0 {
			definition = strings.TrimSpace(row[definitionCol])
		}

		// Rows where both fields are empty placeholders carry nothing.
		if emptyCell(phrase) && emptyCell(definition) {
			continue
		}

		metadata := map[string]any{}
		for col, value := range row {
			if col == phraseCol || col == definitionCol {
				continue
			}
			if value = strings.TrimSpace(value); value != "" {
				metadata[header[col]] = value
			}
		}

		records = append(records, Record{
			Phrase:     phrase,
			Definition: definition,
			Metadata:   metadata,
		})
	}

	return records, nil
}

// findColumn locates a column by testing keywords in priority order,
// then columns in declaration order. The first keyword with any matching
// column wins.
func findColumn(header []string, keywords []string) int {
	for _, keyword := range keywords {
		for i, column := range header {
			if strings.Contains(column, keyword) {
				return i
			}
		}
	}
	return -1
}

// emptyCell reports whether a cell value is one of the placeholder forms
// tabular exports use for missing data.
func emptyCell(value string) bool {
	switch strings.ToLower(value) {
	case "", "nan", "none":
		return true
	}
	return false
}
