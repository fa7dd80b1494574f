package dataset

import (
	"math"
	"strconv"
	"strings"
)

// nullMarkers are the cell values read as missing: IMDb's \N plus the
// common NA spellings found in exported CSV files.
var nullMarkers = map[string]bool{
	"":         true,
	`\N`:       true,
	"NA":       true,
	"N/A":      true,
	"n/a":      true,
	"NaN":      true,
	"nan":      true,
	"-NaN":     true,
	"-nan":     true,
	"NULL":     true,
	"null":     true,
	"None":     true,
	"<NA>":     true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
}

// IsNull reports whether a raw cell counts as missing.
func IsNull(s string) bool {
	return nullMarkers[strings.TrimSpace(s)]
}

// ParseNumber coerces a cell to a finite float. Invalid input yields false
// instead of an error.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if nullMarkers[s] {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseInt coerces a cell to an integer, truncating a fractional part the
// way a float-to-int cast does.
func parseInt(s string) (int, bool) {
	v, ok := ParseNumber(s)
	if !ok || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(v)), true
}

func optionalFloat(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

func optionalInt64(s string) *int64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	n := int64(v)
	return &n
}

// SeasonKey normalizes a season cell: integral numbers lose any ".0"
// suffix so "1" and "1.0" select the same season.
func SeasonKey(s string) string {
	if v, ok := ParseNumber(s); ok {
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.TrimSpace(s)
}
