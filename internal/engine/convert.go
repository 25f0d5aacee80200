package engine

// convert.go coerces raw CSV cells into typed column values.
//
// BMS tools are not consistent about how they write cells:
//   - Register values appear as decimals, zero-padded decimals or hex strings
//   - Timestamps use ISO, US and slash-separated layouts, with or without
//     fractional seconds
//   - Missing readings are blank or spelled NA, NaN, null and similar
//
// A column's kind is inferred from all of its non-missing cells: integer if
// every cell is an integer, float if every cell is a number, text otherwise.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// missingTokens are cell values treated as an explicit missing marker.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"#N/A": {},
}

// timeColumnNames lists the timestamp column candidates in priority order.
var timeColumnNames = []string{"DateTime", "Time"}

// timestampLayouts are tried in order. Fractional seconds are accepted after
// the seconds field without being spelled out in the layout. Time-of-day
// values parse onto the zero date.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"02-Jan-2006 15:04:05",
	"Jan 2 2006 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"15:04:05",
	"3:04:05 PM",
}

// isMissing reports whether a trimmed cell denotes a missing value.
func isMissing(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

// parseInt accepts plain base-10 integers, including zero-padded ones.
func parseInt(cell string) (int64, bool) {
	v, err := strconv.ParseInt(cell, 10, 64)
	return v, err == nil
}

// parseFloat accepts finite decimal and scientific numbers. Inf and NaN
// spellings are rejected so they cannot leak into derived series.
func parseFloat(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	if strings.HasPrefix(cell, "0x") || strings.HasPrefix(cell, "0X") {
		// ParseFloat accepts hex floats; registers written as hex stay text.
		return 0, false
	}
	return v, true
}

// ParseTimestamp parses a single timestamp cell. The result is in UTC unless
// the value carries its own offset.
func ParseTimestamp(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inferColumn builds a typed column from trimmed raw cells.
func inferColumn(name string, cells []string) *Column {
	n := len(cells)
	allInt, allFloat := true, true

	for _, cell := range cells {
		if isMissing(cell) {
			continue
		}
		if allInt {
			if _, ok := parseInt(cell); !ok {
				allInt = false
			}
		}
		if !allInt {
			if _, ok := parseFloat(cell); !ok {
				allFloat = false
				break
			}
		}
	}

	col := &Column{Name: name, Valid: make([]bool, n)}
	switch {
	case allInt:
		col.Kind = ColumnInt
		col.Ints = make([]int64, n)
		for i, cell := range cells {
			if isMissing(cell) {
				continue
			}
			col.Ints[i], col.Valid[i] = parseInt(cell)
		}
	case allFloat:
		col.Kind = ColumnFloat
		col.Floats = make([]float64, n)
		for i, cell := range cells {
			if isMissing(cell) {
				continue
			}
			col.Floats[i], col.Valid[i] = parseFloat(cell)
		}
	default:
		col.Kind = ColumnText
		col.Texts = make([]string, n)
		for i, cell := range cells {
			if isMissing(cell) {
				continue
			}
			col.Texts[i] = cell
			col.Valid[i] = true
		}
	}
	return col
}

// timeColumn parses every cell as a timestamp. It returns the number of
// non-missing cells that failed to parse and the index of the first one.
func timeColumn(name string, cells []string) (col *Column, failed, firstFailed int) {
	n := len(cells)
	col = &Column{
		Name:  name,
		Kind:  ColumnTime,
		Times: make([]time.Time, n),
		Valid: make([]bool, n),
	}
	firstFailed = -1
	for i, cell := range cells {
		if isMissing(cell) {
			continue
		}
		t, ok := ParseTimestamp(cell)
		if !ok {
			failed++
			if firstFailed < 0 {
				firstFailed = i
			}
			continue
		}
		col.Times[i] = t
		col.Valid[i] = true
	}
	return col, failed, firstFailed
}
