package engine

// flags.go reports which status and alert registers left their baseline.
//
// Firmware revisions print a zero register differently ("0", "00", "0000",
// "0x0", "0x00", "0x0000"), so text columns are compared against that alias
// set rather than a single literal. Longer hex widths are not covered.

import (
	"fmt"
	"strings"
)

// ZeroAliases are the text spellings of a zero (no fault) register.
var ZeroAliases = map[string]struct{}{
	"0":      {},
	"0x0":    {},
	"0x00":   {},
	"0x0000": {},
	"0000":   {},
	"00":     {},
}

// IsFlagColumn selects status and alert columns by case-sensitive substring.
func IsFlagColumn(name string) bool {
	return strings.Contains(name, "Stat") || strings.Contains(name, "Alert")
}

// Flag is the state of one candidate column.
type Flag struct {
	Column string `json:"column"`
	Active bool   `json:"active"`
}

// FlagReport lists every candidate column in table order.
type FlagReport []Flag

// Active returns the state of the named column. found is false when the
// column was not a candidate.
func (r FlagReport) Active(name string) (active, found bool) {
	for _, f := range r {
		if f.Column == name {
			return f.Active, true
		}
	}
	return false, false
}

// ActiveColumns returns the names of all active columns.
func (r FlagReport) ActiveColumns() []string {
	var names []string
	for _, f := range r {
		if f.Active {
			names = append(names, f.Column)
		}
	}
	return names
}

// DetectFlags inspects every flag column of t. Numeric columns are active when
// any value is non-zero; text columns when any value is outside ZeroAliases.
// Missing values never make a column active. A column of any other kind is
// reported inactive with a warning.
func DetectFlags(t *Table) (FlagReport, []Warning) {
	var (
		report   FlagReport
		warnings []Warning
	)
	for _, col := range t.Columns {
		if !IsFlagColumn(col.Name) {
			continue
		}
		active, err := columnActive(col)
		if err != nil {
			warnings = append(warnings, Warning{
				Code:    WarnFlagShape,
				Column:  col.Name,
				Message: err.Error(),
			})
		}
		report = append(report, Flag{Column: col.Name, Active: active})
	}
	return report, warnings
}

func columnActive(col *Column) (bool, error) {
	switch col.Kind {
	case ColumnInt:
		for i, v := range col.Ints {
			if col.Valid[i] && v != 0 {
				return true, nil
			}
		}
		return false, nil
	case ColumnFloat:
		for i, v := range col.Floats {
			if col.Valid[i] && v != 0 {
				return true, nil
			}
		}
		return false, nil
	case ColumnText:
		for i, v := range col.Texts {
			if !col.Valid[i] {
				continue
			}
			if _, zero := ZeroAliases[strings.TrimSpace(v)]; !zero {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("column %q holds %s values, not a register", col.Name, col.Kind)
	}
}
