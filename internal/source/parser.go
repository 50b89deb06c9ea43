// Package source locates, decodes and parses the per-program CSV extracts.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// ParseResult holds the output of parsing a single program extract.
type ParseResult struct {
	Dataset *model.Dataset
	// Coerced counts numeric cells that were present but not parseable and became null.
	Coerced int
	Err     error
}

// columnIndex maps known header names to their position, -1 when absent.
type columnIndex struct {
	recipient, idNumber, city, subprogram, funding int
	amount, duration, year, cluster                 int
}

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	idx := columnIndex{
		recipient:  lookup(model.ColRecipient),
		idNumber:   lookup(model.ColIDNumber),
		city:       lookup(model.ColCity),
		subprogram: lookup(model.ColSubprogram),
		funding:    lookup(model.ColFundingSource),
		amount:     lookup(model.ColAmount),
		duration:   lookup(model.ColDuration),
		year:       lookup(model.ColYear),
		cluster:    lookup(model.ColCluster),
	}
	if idx.amount < 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingColumn, model.ColAmount)
	}
	if idx.duration < 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingColumn, model.ColDuration)
	}
	return idx, nil
}

// cleanHeader trims names and drops a byte-order mark, whether it arrived as
// U+FEFF or as its Latin-1 mis-decoding.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
			h = strings.TrimPrefix(h, "\u00ef\u00bb\u00bf")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func newCSVReader(r io.Reader, opts Options) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = opts.delimiter()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// ParseFile reads a program extract into a dataset. Numeric columns are coerced
// to decimals; cells that fail coercion become null and are counted, never fatal.
// A missing file yields an error satisfying errors.Is(err, os.ErrNotExist).
func ParseFile(pf ProgramFile, opts Options) ParseResult {
	f, err := os.Open(pf.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	dec, err := decodingReader(f, opts.Encoding)
	if err != nil {
		return ParseResult{Err: err}
	}
	return Parse(dec, pf.Program, opts)
}

// Parse reads CSV text that has already been decoded to UTF-8.
func Parse(r io.Reader, program model.Program, opts Options) ParseResult {
	cr := newCSVReader(r, opts)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{Err: ErrEmptyFile}
		}
		return ParseResult{Err: fmt.Errorf("read header: %w", err)}
	}
	header = cleanHeader(header)

	idx, err := indexColumns(header)
	if err != nil {
		return ParseResult{Err: err}
	}

	ds := &model.Dataset{Columns: header}
	coerced := 0

	for {
		row, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return ParseResult{Err: fmt.Errorf("read row %d: %w", len(ds.Records)+1, err)}
		}

		if len(row) > len(header) {
			line, _ := cr.FieldPos(0)
			return ParseResult{Err: &RowError{Line: line, Want: len(header), Got: len(row)}}
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		rec, n := buildRecord(row, idx, program)
		coerced += n
		ds.Records = append(ds.Records, rec)
	}

	return ParseResult{Dataset: ds, Coerced: coerced}
}

func buildRecord(row []string, idx columnIndex, program model.Program) (model.Record, int) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}
	category := func(i int) string {
		v := cell(i)
		if IsMissing(v) {
			return ""
		}
		return v
	}

	rec := model.Record{
		Program:       program,
		Recipient:     category(idx.recipient),
		IDNumber:      category(idx.idNumber),
		City:          category(idx.city),
		Subprogram:    category(idx.subprogram),
		FundingSource: category(idx.funding),
	}

	coerced := 0
	rec.Amount = ParseNumber(cell(idx.amount))
	if !rec.Amount.Valid && !IsMissing(strings.TrimSpace(cell(idx.amount))) {
		coerced++
	}
	rec.Duration = ParseNumber(cell(idx.duration))
	if !rec.Duration.Valid && !IsMissing(strings.TrimSpace(cell(idx.duration))) {
		coerced++
	}

	if y, ok := parseInt(cell(idx.year)); ok {
		rec.Year = y
	}
	if c, ok := parseInt(cell(idx.cluster)); ok && c >= 0 {
		rec.Cluster = c
		rec.HasCluster = true
	}

	return rec, coerced
}

// parseInt accepts integer-valued numbers, including "2021.0" as written by
// spreadsheet tools for columns that had a gap.
func parseInt(raw string) (int, bool) {
	n := ParseNumber(raw)
	if !n.Valid || !n.Decimal.IsInteger() {
		return 0, false
	}
	return int(n.Decimal.IntPart()), true
}
