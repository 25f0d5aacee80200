package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ParseTable parses lines[headerIndex:] as comma-delimited text whose first
// row names the columns.
//
// Column names are trimmed; duplicates are kept and reported. Rows with the
// wrong field count are dropped with a warning. If a DateTime (or else Time)
// column exists its cells are parsed as timestamps and rows are stably sorted
// by it, with missing timestamps last.
//
// Each line is read as exactly one record, so an unbalanced quote damages
// only its own row.
//
// An error is returned only when the header row itself cannot be read.
func ParseTable(lines []string, headerIndex int) (*Table, []Warning, error) {
	if headerIndex < 0 || headerIndex >= len(lines) {
		return nil, nil, fmt.Errorf("header index %d out of range (%d lines)", headerIndex, len(lines))
	}

	header, err := readRecord(lines[headerIndex])
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var warnings []Warning

	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		if seen[names[i]] {
			warnings = append(warnings, Warning{
				Code:    WarnDuplicateColumn,
				Line:    headerIndex + 1,
				Column:  names[i],
				Message: fmt.Sprintf("duplicate column name %q", names[i]),
			})
		}
		seen[names[i]] = true
	}

	cells := make([][]string, len(names))
	for k, raw := range lines[headerIndex+1:] {
		lineNo := headerIndex + k + 2
		record, err := readRecord(raw)
		if err == io.EOF {
			continue
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				warnings = append(warnings, Warning{
					Code:    WarnCSVSyntax,
					Line:    lineNo,
					Message: fmt.Sprintf("row dropped: %v", pe.Err),
				})
				continue
			}
			return nil, warnings, fmt.Errorf("read rows: %w", err)
		}

		if len(record) != len(names) {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedRow,
				Line:    lineNo,
				Message: fmt.Sprintf("row dropped: expected %d fields, got %d", len(names), len(record)),
			})
			continue
		}

		for i, cell := range record {
			cells[i] = append(cells[i], strings.TrimSpace(cell))
		}
	}

	timeName := ""
	for _, candidate := range timeColumnNames {
		if seen[candidate] {
			timeName = candidate
			break
		}
	}

	cols := make([]*Column, len(names))
	timeIdx := -1
	for i, name := range names {
		if name == timeName && timeIdx < 0 {
			col, failed, first := timeColumn(name, cells[i])
			if failed > 0 {
				warnings = append(warnings, Warning{
					Code:    WarnBadTimestamp,
					Column:  name,
					Message: fmt.Sprintf("%d value(s) could not be parsed as timestamps (first: %q)", failed, cells[i][first]),
				})
			}
			cols[i] = col
			timeIdx = i
			continue
		}
		cols[i] = inferColumn(name, cells[i])
	}

	table, err := NewTable(cols...)
	if err != nil {
		return nil, warnings, err
	}
	if timeIdx >= 0 {
		table = sortByTime(table, cols[timeIdx])
	}
	return table, warnings, nil
}

// sortByTime returns the table ordered by ts ascending. The sort is stable and
// missing timestamps form a terminal group in their original order.
func sortByTime(t *Table, ts *Column) *Table {
	order := make([]int, t.Rows())
	sorted := true
	for i := range order {
		order[i] = i
		if i > 0 && timeLess(ts, i, i-1) {
			sorted = false
		}
	}
	if sorted {
		return t
	}

	sort.SliceStable(order, func(a, b int) bool {
		return timeLess(ts, order[a], order[b])
	})
	return t.pick(order)
}

// timeLess orders valid timestamps ascending before missing ones.
func timeLess(ts *Column, i, j int) bool {
	vi, vj := ts.Valid[i], ts.Valid[j]
	switch {
	case vi && vj:
		return ts.Times[i].Before(ts.Times[j])
	case vi:
		return true
	default:
		return false
	}
}

// readRecord reads one line as a single CSV record. Quoted fields may not
// span lines. io.EOF means the line is empty.
func readRecord(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}
