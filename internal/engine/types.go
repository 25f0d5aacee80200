package engine

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the classification of a log file.
type Kind string

const (
	KindData    Kind = "data"
	KindError   Kind = "error"
	KindUnknown Kind = "unknown"
)

// Classification is the result of scanning a file's header window.
// HeaderIndex is -1 when Kind is KindUnknown.
type Classification struct {
	Kind        Kind
	HeaderIndex int
	Metadata    map[string]string
}

// Recognized reports whether a header line was found.
func (c Classification) Recognized() bool {
	return c.Kind == KindData || c.Kind == KindError
}

// ColumnKind tags the value representation of a column. It is decided once
// while parsing so later stages branch on the tag instead of inspecting values.
type ColumnKind int

const (
	ColumnInt ColumnKind = iota
	ColumnFloat
	ColumnText
	ColumnTime
)

// String returns the JSON-friendly name of the kind.
func (k ColumnKind) String() string {
	switch k {
	case ColumnInt:
		return "int"
	case ColumnFloat:
		return "float"
	case ColumnText:
		return "text"
	case ColumnTime:
		return "time"
	default:
		return "unknown"
	}
}

// Column is one named, typed sequence of values. Only the slice matching Kind
// is populated. Valid[i] is false where the source cell was empty or could not
// be coerced; the typed slot at that index holds the zero value and must be
// ignored.
type Column struct {
	Name   string
	Kind   ColumnKind
	Ints   []int64
	Floats []float64
	Texts  []string
	Times  []time.Time
	Valid  []bool
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsNumeric reports whether the column holds integers or floats.
func (c *Column) IsNumeric() bool {
	return c.Kind == ColumnInt || c.Kind == ColumnFloat
}

// Float returns row i as a float64. ok is false for missing values and for
// non-numeric columns.
func (c *Column) Float(i int) (v float64, ok bool) {
	if !c.Valid[i] {
		return 0, false
	}
	switch c.Kind {
	case ColumnInt:
		return float64(c.Ints[i]), true
	case ColumnFloat:
		return c.Floats[i], true
	default:
		return 0, false
	}
}

// Time returns row i of a timestamp column.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Kind != ColumnTime || !c.Valid[i] {
		return time.Time{}, false
	}
	return c.Times[i], true
}

// Text returns row i formatted as text, regardless of kind.
func (c *Column) Text(i int) (string, bool) {
	if !c.Valid[i] {
		return "", false
	}
	switch c.Kind {
	case ColumnInt:
		return strconv.FormatInt(c.Ints[i], 10), true
	case ColumnFloat:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64), true
	case ColumnText:
		return c.Texts[i], true
	case ColumnTime:
		return c.Times[i].Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}

// Value returns row i as a plain Go value, or nil when missing.
func (c *Column) Value(i int) any {
	if !c.Valid[i] {
		return nil
	}
	switch c.Kind {
	case ColumnInt:
		return c.Ints[i]
	case ColumnFloat:
		return c.Floats[i]
	case ColumnText:
		return c.Texts[i]
	case ColumnTime:
		return c.Times[i]
	default:
		return nil
	}
}

// pick builds a new column holding the rows listed in idx, in that order.
func (c *Column) pick(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, len(idx))}
	switch c.Kind {
	case ColumnInt:
		out.Ints = make([]int64, len(idx))
	case ColumnFloat:
		out.Floats = make([]float64, len(idx))
	case ColumnText:
		out.Texts = make([]string, len(idx))
	case ColumnTime:
		out.Times = make([]time.Time, len(idx))
	}
	for dst, src := range idx {
		out.Valid[dst] = c.Valid[src]
		switch c.Kind {
		case ColumnInt:
			out.Ints[dst] = c.Ints[src]
		case ColumnFloat:
			out.Floats[dst] = c.Floats[src]
		case ColumnText:
			out.Texts[dst] = c.Texts[src]
		case ColumnTime:
			out.Times[dst] = c.Times[src]
		}
	}
	return out
}

// newFloatColumn allocates an empty float column of n rows.
func newFloatColumn(name string, n int) *Column {
	return &Column{
		Name:   name,
		Kind:   ColumnFloat,
		Floats: make([]float64, n),
		Valid:  make([]bool, n),
	}
}

// Table is an ordered list of equally long columns. Columns are kept as a
// list rather than a map so duplicate names survive parsing.
//
// Tables are treated as immutable once built: derivations return a new Table
// that shares the unchanged columns of its source.
type Table struct {
	Columns []*Column
	rows    int
}

// NewTable builds a table from columns that all have the same length.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{Columns: cols}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// Rows returns the row count.
func (t *Table) Rows() int {
	return t.rows
}

// Names returns the column names in table order, duplicates included.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the first column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// TimeColumn returns the parsed timestamp column: DateTime, or failing that Time.
func (t *Table) TimeColumn() (*Column, bool) {
	for _, name := range timeColumnNames {
		if c, ok := t.Column(name); ok && c.Kind == ColumnTime {
			return c, true
		}
	}
	return nil, false
}

// withColumn returns a new table with c appended, or replacing an existing
// column of the same name so that derivations stay idempotent.
func (t *Table) withColumn(c *Column) *Table {
	cols := make([]*Column, 0, len(t.Columns)+1)
	replaced := false
	for _, existing := range t.Columns {
		if !replaced && existing.Name == c.Name {
			cols = append(cols, c)
			replaced = true
			continue
		}
		cols = append(cols, existing)
	}
	if !replaced {
		cols = append(cols, c)
	}
	return &Table{Columns: cols, rows: t.rows}
}

// pick returns a new table with the rows listed in idx.
func (t *Table) pick(idx []int) *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.pick(idx)
	}
	return &Table{Columns: cols, rows: len(idx)}
}

// Warning codes. See the package documentation for their meaning.
const (
	WarnMalformedRow    = "W001"
	WarnDuplicateColumn = "W002"
	WarnBadTimestamp    = "W003"
	WarnFlagShape       = "W004"
	WarnNoErrorCode     = "W005"
	WarnUnreliableAxis  = "W006"
	WarnCSVSyntax       = "W007"
)

// Warning is a non-fatal problem found while processing one file.
// Line is the 1-based line number in the file, or 0 when not tied to a line.
type Warning struct {
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", w.Code, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
