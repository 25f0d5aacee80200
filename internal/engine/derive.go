package engine

import "strings"

// Derived column names and the source columns they read.
const (
	VoltageColumn    = "Voltage"
	CurrentColumn    = "Current"
	PowerColumn      = "power_watts"
	VoltsColumn      = "voltage_v"
	AmpsColumn       = "current_a"
	CellSpreadColumn = "cell_spread_mv"
	CellVoltPrefix   = "CellVolt"
)

// milli converts the instruments' mV and mA readings to base units.
const milli = 1000.0

// DerivePower appends power_watts = (Voltage/1000) * (Current/1000). ok is
// false, and t is returned unchanged, when either column is absent or not
// numeric.
func DerivePower(t *Table) (out *Table, ok bool) {
	v, okV := numericColumn(t, VoltageColumn)
	c, okC := numericColumn(t, CurrentColumn)
	if !okV || !okC {
		return t, false
	}

	col := newFloatColumn(PowerColumn, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		vi, ok1 := v.Float(i)
		ci, ok2 := c.Float(i)
		if ok1 && ok2 {
			col.Floats[i] = (vi / milli) * (ci / milli)
			col.Valid[i] = true
		}
	}
	return t.withColumn(col), true
}

// DeriveScaled appends voltage_v and current_a for whichever of Voltage and
// Current exist and are numeric. It returns the names of the columns added.
func DeriveScaled(t *Table) (*Table, []string) {
	var added []string
	for _, pair := range [][2]string{{VoltageColumn, VoltsColumn}, {CurrentColumn, AmpsColumn}} {
		src, ok := numericColumn(t, pair[0])
		if !ok {
			continue
		}
		col := newFloatColumn(pair[1], t.Rows())
		for i := 0; i < t.Rows(); i++ {
			if v, ok := src.Float(i); ok {
				col.Floats[i] = v / milli
				col.Valid[i] = true
			}
		}
		t = t.withColumn(col)
		added = append(added, pair[1])
	}
	return t, added
}

// CellVoltageColumns returns the numeric CellVolt* column names in table order.
func CellVoltageColumns(t *Table) []string {
	var names []string
	for _, c := range t.Columns {
		if strings.HasPrefix(c.Name, CellVoltPrefix) && c.IsNumeric() {
			names = append(names, c.Name)
		}
	}
	return names
}

// DeriveCellSpread appends cell_spread_mv, the difference between the highest
// and lowest cell voltage in each row. It needs at least two cell columns.
func DeriveCellSpread(t *Table) (*Table, bool) {
	var cells []*Column
	for _, c := range t.Columns {
		if strings.HasPrefix(c.Name, CellVoltPrefix) && c.IsNumeric() {
			cells = append(cells, c)
		}
	}
	if len(cells) < 2 {
		return t, false
	}

	col := newFloatColumn(CellSpreadColumn, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		var lo, hi float64
		seen := false
		for _, c := range cells {
			v, ok := c.Float(i)
			if !ok {
				continue
			}
			if !seen {
				lo, hi, seen = v, v, true
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if seen {
			col.Floats[i] = hi - lo
			col.Valid[i] = true
		}
	}
	return t.withColumn(col), true
}

// Downsample keeps every rate-th row starting with the first. A rate below 2
// returns t itself.
func Downsample(t *Table, rate int) *Table {
	if rate < 2 || t.Rows() == 0 {
		return t
	}
	idx := make([]int, 0, (t.Rows()+rate-1)/rate)
	for i := 0; i < t.Rows(); i += rate {
		idx = append(idx, i)
	}
	return t.pick(idx)
}

// Head returns the first n rows of t, or t itself when it is not longer.
func Head(t *Table, n int) *Table {
	if n < 0 || t.Rows() <= n {
		return t
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.pick(idx)
}

func numericColumn(t *Table, name string) (*Column, bool) {
	c, ok := t.Column(name)
	if !ok || !c.IsNumeric() {
		return nil, false
	}
	return c, true
}
