package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// schemaColumns maps lowercased header names to canonical column names.
var schemaColumns = map[string]string{
	strings.ToLower(ColPaymentType): ColPaymentType,
	strings.ToLower(ColAge):         ColAge,
	strings.ToLower(ColCity):        ColCity,
	strings.ToLower(ColItems):       ColItems,
	strings.ToLower(ColTotal):       ColTotal,
	strings.ToLower(ColCount):       ColCount,
}

// ReadTable decodes a headed CSV stream into raw rows. Header matching is
// case-insensitive; columns outside the schema are ignored. Short rows are
// padded so missing trailing fields surface as empty values.
func ReadTable(reader io.Reader, delim rune) ([]RawRow, error) {
	r := csv.NewReader(reader)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if delim != 0 {
		r.Comma = delim
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Map column index -> canonical name; unmapped columns stay "".
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = schemaColumns[strings.ToLower(strings.TrimSpace(h))]
	}

	var rows []RawRow
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(RawRow, len(schemaColumns))
		for i, name := range names {
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile decodes a CSV/TSV file into raw rows. The delimiter is sniffed
// from the extension unless one is given.
func ReadFile(path string, delim rune) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadTable(f, delim)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
