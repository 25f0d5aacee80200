package engine

import "sort"

// ErrorCodeColumn holds the fault code in error logs.
const ErrorCodeColumn = "Error Code"

// ErrorCount is the number of rows carrying one error code.
type ErrorCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// ErrorTally is sorted by descending count; ties keep first-seen order.
type ErrorTally []ErrorCount

// Total returns the number of counted rows.
func (t ErrorTally) Total() int {
	n := 0
	for _, c := range t {
		n += c.Count
	}
	return n
}

// TallyErrors counts rows per distinct Error Code value. Missing codes are
// not counted. A table without the column yields an empty tally and a warning.
func TallyErrors(t *Table) (ErrorTally, []Warning) {
	col, ok := t.Column(ErrorCodeColumn)
	if !ok {
		return ErrorTally{}, []Warning{{
			Code:    WarnNoErrorCode,
			Column:  ErrorCodeColumn,
			Message: "error log has no \"Error Code\" column; tally unavailable",
		}}
	}

	tally := ErrorTally{}
	pos := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		code, ok := col.Text(i)
		if !ok {
			continue
		}
		if p, seen := pos[code]; seen {
			tally[p].Count++
			continue
		}
		pos[code] = len(tally)
		tally = append(tally, ErrorCount{Code: code, Count: 1})
	}

	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].Count > tally[j].Count
	})
	return tally, nil
}
