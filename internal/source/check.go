package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CheckColumns re-reads a delimited file and reports every data row whose
// field count differs from the header's. Quoting follows the same rules as
// ParseFile, so a clean report means the file will load.
func CheckColumns(path string, opts Options) (*CheckReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dec, err := decodingReader(f, opts.Encoding)
	if err != nil {
		return nil, err
	}
	return checkReader(dec, path, opts)
}

func checkReader(r io.Reader, path string, opts Options) (*CheckReport, error) {
	lc := &lineCounter{r: r}
	cr := newCSVReader(lc, opts)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	report := &CheckReport{Path: path, Columns: len(header)}
	// Blank lines are data rows with zero fields. encoding/csv skips them,
	// so they are recovered from the gaps between record line numbers.
	prevEnd := recordEndLine(cr, header)
	for {
		row, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				report.blankLines(prevEnd+1, lc.lines())
				break
			}
			return report, fmt.Errorf("read row %d: %w", report.Rows+1, err)
		}

		line, _ := cr.FieldPos(0)
		report.blankLines(prevEnd+1, line-1)
		report.Rows++
		if len(row) != report.Columns {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Index: report.Rows,
				Line:  line,
				Want:  report.Columns,
				Got:   len(row),
				Row:   row,
			})
		}
		prevEnd = recordEndLine(cr, row)
	}
	return report, nil
}

// blankLines records lines first..last as empty rows.
func (r *CheckReport) blankLines(first, last int) {
	for line := first; line <= last; line++ {
		r.Rows++
		r.Mismatches = append(r.Mismatches, Mismatch{
			Index: r.Rows,
			Line:  line,
			Want:  r.Columns,
		})
	}
}

// recordEndLine returns the last line of the record just read, counting
// newlines inside a quoted final field.
func recordEndLine(cr *csv.Reader, row []string) int {
	last := len(row) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(row[last], "\n")
}

// lineCounter counts the lines passing through it.
type lineCounter struct {
	r        io.Reader
	newlines int
	last     byte
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.newlines += bytes.Count(p[:n], []byte{'\n'})
		c.last = p[n-1]
	}
	return n, err
}

func (c *lineCounter) lines() int {
	if c.last != 0 && c.last != '\n' {
		return c.newlines + 1
	}
	return c.newlines
}
