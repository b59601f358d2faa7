package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCSV reads a CSV table into a Dataset. The first non-comment record is
// the header. Lines starting with '#' (the NASA Exoplanet Archive comment
// banner) are skipped. Column types are inferred: a column whose every
// non-empty cell parses as a float is numeric, one whose every non-empty
// cell is true/false is boolean, anything else is text. Empty cells are
// nulls regardless of type.
func ParseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV contains no header row")
	}

	header := records[0]
	rows := records[1:]

	raw := make([][]string, len(header))
	for ci := range header {
		raw[ci] = make([]string, len(rows))
		for ri, rec := range rows {
			if ci < len(rec) {
				raw[ci][ri] = strings.TrimSpace(rec[ci])
			}
		}
	}

	columns := make([]Column, len(header))
	for ci, name := range header {
		columns[ci] = inferColumn(strings.TrimSpace(name), raw[ci])
	}

	return New(columns)
}

// ParseCSVString is a convenience wrapper over ParseCSV
func ParseCSVString(content string) (*Dataset, error) {
	return ParseCSV(strings.NewReader(content))
}

func inferColumn(name string, values []string) Column {
	numeric := true
	boolean := true
	nonEmpty := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		if numeric {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
			}
		}
		if boolean {
			switch strings.ToLower(v) {
			case "true", "false":
			default:
				boolean = false
			}
		}
	}

	col := Column{Name: name, Null: make([]bool, len(values))}
	switch {
	case nonEmpty > 0 && numeric:
		col.Kind = KindNumeric
		col.Float = make([]float64, len(values))
		for i, v := range values {
			if v == "" {
				col.Null[i] = true
				continue
			}
			f, _ := strconv.ParseFloat(v, 64)
			col.Float[i] = f
		}
	case nonEmpty > 0 && boolean:
		col.Kind = KindBoolean
		col.Text = make([]string, len(values))
		for i, v := range values {
			if v == "" {
				col.Null[i] = true
				continue
			}
			col.Text[i] = strings.ToLower(v)
		}
	default:
		// All-empty columns stay text with every cell null
		col.Kind = KindString
		col.Text = make([]string, len(values))
		for i, v := range values {
			if v == "" {
				col.Null[i] = true
				continue
			}
			col.Text[i] = v
		}
	}
	return col
}
