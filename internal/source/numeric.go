package source

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberPattern accepts plain integers and decimals with an optional exponent.
// Thousands separators, currency symbols and words like "nan" are rejected.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber coerces a raw field into a decimal. Anything that is not a
// well-formed number yields an invalid (null) value instead of an error.
func ParseNumber(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if s == "" || !numberPattern.MatchString(s) {
		return decimal.NullDecimal{}
	}

	// decimal wants a digit before the point.
	switch {
	case strings.HasPrefix(s, "."):
		s = "0" + s
	case strings.HasPrefix(s, "+."), strings.HasPrefix(s, "-."):
		s = s[:1] + "0" + s[1:]
	}
	s = strings.TrimPrefix(s, "+")
	if i := strings.IndexAny(s, "eE"); i > 0 && s[i-1] == '.' {
		s = s[:i-1] + s[i:]
	} else if strings.HasSuffix(s, ".") {
		s = strings.TrimSuffix(s, ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// missingTokens are the spellings spreadsheet exports use for an empty cell.
var missingTokens = map[string]struct{}{
	"":        {},
	"na":      {},
	"n/a":     {},
	"nan":     {},
	"-nan":    {},
	"null":    {},
	"none":    {},
	"#n/a":    {},
	"#na":     {},
	"<na>":    {},
	"-1.#ind": {},
	"1.#ind":  {},
	"1.#qnan": {},
}

// IsMissing reports whether a categorical cell should be treated as null.
func IsMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(raw)]
	return ok
}
