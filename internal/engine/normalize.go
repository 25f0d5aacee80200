package engine

import "fmt"

// ElapsedColumn is the derived relative time axis, in minutes.
const ElapsedColumn = "elapsed_minutes"

// ElapsedSecondsColumns name per-sample elapsed-time columns, in seconds,
// that some loggers write. They take precedence over timestamps.
var ElapsedSecondsColumns = []string{"ElapsedSec", "ElapsedSeconds", "ElapsedTime", "Elapsed"}

// TimeAxis describes how a table's elapsed_minutes column was derived.
type TimeAxis struct {
	// Source is the column the axis was computed from.
	Source string `json:"source"`
	// Reliable is false when the axis could not be anchored, in which case
	// every elapsed value is missing and cross-file comparison is unsafe.
	Reliable bool `json:"reliable"`
}

// NormalizeTime returns a new table with an elapsed_minutes column appended.
// The source table is not modified, so calling it repeatedly yields the same
// values.
//
// An elapsed-seconds column is divided by 60. Otherwise the parsed timestamp
// column is measured against the first row's timestamp. ok is false when the
// table has neither source.
func NormalizeTime(t *Table) (out *Table, axis TimeAxis, warnings []Warning, ok bool) {
	if src, found := elapsedSecondsColumn(t); found {
		col := newFloatColumn(ElapsedColumn, t.Rows())
		for i := 0; i < t.Rows(); i++ {
			if v, ok := src.Float(i); ok {
				col.Floats[i] = v / 60
				col.Valid[i] = true
			}
		}
		return t.withColumn(col), TimeAxis{Source: src.Name, Reliable: true}, nil, true
	}

	ts, found := t.TimeColumn()
	if !found {
		return t, TimeAxis{}, nil, false
	}

	col := newFloatColumn(ElapsedColumn, t.Rows())
	axis = TimeAxis{Source: ts.Name, Reliable: true}
	if t.Rows() == 0 {
		return t.withColumn(col), axis, nil, true
	}

	epoch, anchored := ts.Time(0)
	if !anchored {
		axis.Reliable = false
		warnings = append(warnings, Warning{
			Code:    WarnUnreliableAxis,
			Column:  ts.Name,
			Message: fmt.Sprintf("first %s value is missing; elapsed time unavailable for comparison", ts.Name),
		})
		return t.withColumn(col), axis, warnings, true
	}

	for i := 0; i < t.Rows(); i++ {
		if v, ok := ts.Time(i); ok {
			col.Floats[i] = v.Sub(epoch).Minutes()
			col.Valid[i] = true
		}
	}
	return t.withColumn(col), axis, nil, true
}

func elapsedSecondsColumn(t *Table) (*Column, bool) {
	for _, name := range ElapsedSecondsColumns {
		if c, ok := t.Column(name); ok && c.IsNumeric() {
			return c, true
		}
	}
	return nil, false
}
