// Package model defines domain types for aid-disbursement records and programs.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Program identifies one of the foundation's aid programs.
type Program string

// The six programs, each backed by its own CSV extract.
const (
	Dakwah      Program = "Dakwah"
	Kemanusiaan Program = "Kemanusiaan"
	Masjid      Program = "Masjid"
	Pendidikan  Program = "Pendidikan"
	Zakat       Program = "Zakat"
	Yatim       Program = "Yatim"
)

// Programs lists every program in display order.
var Programs = []Program{Dakwah, Kemanusiaan, Masjid, Pendidikan, Zakat, Yatim}

// ParseProgram matches a program name case-insensitively.
func ParseProgram(name string) (Program, bool) {
	name = strings.TrimSpace(name)
	for _, p := range Programs {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}

// Column names as they appear in the CSV header.
const (
	ColRecipient     = "Nama Penerima"
	ColIDNumber      = "KTP/SIM"
	ColCity          = "Kota"
	ColSubprogram    = "Kat. Subprogram"
	ColFundingSource = "Sumber Anggaran"
	ColAmount        = "Jumlah Bantuan"
	ColDuration      = "Durasi Total"
	ColYear          = "Tahun"
	ColCluster       = "Cluster"
)

// Record is one aid-disbursement transaction.
type Record struct {
	Program       Program
	Recipient     string
	IDNumber      string // opaque; leading zeros are significant
	City          string
	Subprogram    string
	FundingSource string

	Amount   decimal.NullDecimal
	Duration decimal.NullDecimal // days

	Year       int // 0 when unknown
	Cluster    int
	HasCluster bool
}

// Field selects one categorical attribute of a Record.
type Field int

const (
	FieldCity Field = iota
	FieldSubprogram
	FieldFundingSource
	FieldRecipient
	FieldIDNumber
)

// String returns the CSV column name of the field.
func (f Field) String() string {
	switch f {
	case FieldCity:
		return ColCity
	case FieldSubprogram:
		return ColSubprogram
	case FieldFundingSource:
		return ColFundingSource
	case FieldRecipient:
		return ColRecipient
	case FieldIDNumber:
		return ColIDNumber
	default:
		return "unknown"
	}
}

// Value returns the record's value for a categorical field. Empty means null.
func (r Record) Value(f Field) string {
	switch f {
	case FieldCity:
		return r.City
	case FieldSubprogram:
		return r.Subprogram
	case FieldFundingSource:
		return r.FundingSource
	case FieldRecipient:
		return r.Recipient
	case FieldIDNumber:
		return r.IDNumber
	default:
		return ""
	}
}

// Dataset is an ordered collection of records for one or more programs.
type Dataset struct {
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// IsEmpty reports whether the dataset holds no records.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}
