package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// Defaults matching the foundation's spreadsheet exports.
const (
	DefaultDelimiter = ';'
	DefaultEncoding  = "latin1"
)

var (
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("file is empty")
)

// Options controls how a program extract is decoded and split.
type Options struct {
	// Delimiter between fields. Zero means DefaultDelimiter.
	Delimiter rune
	// Encoding name (latin1, windows-1252, utf-8, or any IANA name). Empty means DefaultEncoding.
	Encoding string
}

// DefaultOptions returns the options used for the foundation's exports.
func DefaultOptions() Options {
	return Options{Delimiter: DefaultDelimiter, Encoding: DefaultEncoding}
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return DefaultDelimiter
	}
	return o.Delimiter
}

func (o Options) encoding() string {
	if e := strings.ToLower(strings.TrimSpace(o.Encoding)); e != "" {
		return e
	}
	return DefaultEncoding
}

// Fingerprint identifies everything besides the file contents that shapes a
// parsed dataset for program p. Cached datasets are only reused when the
// fingerprint matches.
func (o Options) Fingerprint(p model.Program) string {
	return fmt.Sprintf("%s|%s|%q", p, o.encoding(), o.delimiter())
}

// RowError reports a data row with more fields than the header.
type RowError struct {
	Line int // 1-based line in the file
	Want int
	Got  int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: expected %d fields, found %d (run `aidboard check` on the file)", e.Line, e.Want, e.Got)
}

// ProgramFile is a program's backing extract on disk.
type ProgramFile struct {
	Program model.Program
	Path    string
	Exists  bool
	Size    int64
}

// Mismatch is one row whose field count differs from the header.
type Mismatch struct {
	Index int // 1-based data row index
	Line  int // 1-based line in the file
	Want  int
	Got   int
	Row   []string
}

// CheckReport is the outcome of a column-count diagnostic.
type CheckReport struct {
	Path       string
	Columns    int
	Rows       int
	Mismatches []Mismatch
}

// OK reports whether every row matched the header.
func (r *CheckReport) OK() bool {
	return len(r.Mismatches) == 0
}
