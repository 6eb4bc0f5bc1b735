package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser converts CSV files to a markdown table. The first row is
// taken as the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	var md strings.Builder
	md.WriteString(tableRow(headers))

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	md.WriteString(tableRow(sep))

	for _, row := range records[1:] {
		// Pad short rows so every line has the header's column count.
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		}
		md.WriteString(tableRow(row))
	}

	doc.Markdown = strings.TrimRight(md.String(), "\n")
	return doc, nil
}

func tableRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(strings.TrimSpace(c), "|", "\\|")
	}
	return "| " + strings.Join(escaped, " | ") + " |\n"
}
