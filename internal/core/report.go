package core

import (
	"time"

	"github.com/JonMunkholm/bmsview/internal/engine"
)

// DefaultPreviewRows is the number of raw rows shown when the caller does
// not ask for a specific count.
const DefaultPreviewRows = 1000

// ReportOptions controls how much of the parsed table a Report carries.
type ReportOptions struct {
	// Downsample keeps every Nth row of the series and preview; values
	// below 2 keep every row.
	Downsample int

	// PreviewRows caps the raw preview. Zero omits the preview and a
	// negative value includes every row.
	PreviewRows int

	// Series includes the numeric plot series for data logs.
	Series bool
}

// ColumnInfo names one parsed column and its inferred type.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Preview is the leading slice of the parsed table.
type Preview struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated"`
}

// Report is a transport-neutral view of one analysis.
type Report struct {
	ID          string                `json:"id"`
	FileName    string                `json:"file_name"`
	Fingerprint string                `json:"fingerprint"`
	Size        int                   `json:"size"`
	Source      Source                `json:"source"`
	Status      engine.Status         `json:"status"`
	Reason      string                `json:"reason,omitempty"`
	Message     *UserMessage          `json:"message,omitempty"`
	Kind        engine.Kind           `json:"kind"`
	HeaderIndex int                   `json:"header_index"`
	Metadata    map[string]string     `json:"metadata,omitempty"`
	Rows        int                   `json:"rows"`
	Columns     []ColumnInfo          `json:"columns,omitempty"`
	TimeAxis    *engine.TimeAxis      `json:"time_axis,omitempty"`
	Comparable  bool                  `json:"comparable"`
	Flags       engine.FlagReport     `json:"flags,omitempty"`
	ActiveFlags []string              `json:"active_flags,omitempty"`
	Errors      engine.ErrorTally     `json:"errors,omitempty"`
	ErrorTotal  int                   `json:"error_total,omitempty"`
	CellColumns []string              `json:"cell_columns,omitempty"`
	Unavailable []string              `json:"unavailable,omitempty"`
	Warnings    []engine.Warning      `json:"warnings,omitempty"`
	Downsample  int                   `json:"downsample,omitempty"`
	Series      map[string][]*float64 `json:"series,omitempty"`
	Preview     *Preview              `json:"preview,omitempty"`
	Cached      bool                  `json:"cached"`
	Persisted   bool                  `json:"persisted"`
	CreatedAt   time.Time             `json:"created_at"`
}

// seriesColumns are the derived data-log columns exported as plot series.
var seriesColumns = []string{
	engine.ElapsedColumn,
	engine.VoltsColumn,
	engine.AmpsColumn,
	engine.PowerColumn,
	engine.CellSpreadColumn,
}

// BuildReport summarizes a for a client. The shared outcome table is never
// modified; downsampling and preview work on copies.
func BuildReport(a *Analysis, opts ReportOptions) Report {
	o := a.Outcome
	r := Report{
		ID:          a.ID.String(),
		FileName:    o.FileName,
		Fingerprint: a.Fingerprint,
		Size:        o.Size,
		Source:      a.Source,
		Status:      o.Status,
		Reason:      o.Reason,
		Kind:        o.Kind,
		HeaderIndex: o.HeaderIndex,
		Metadata:    o.Metadata,
		Rows:        rowCount(o),
		TimeAxis:    o.TimeAxis,
		Comparable:  o.Comparable(),
		Flags:       o.Flags,
		ActiveFlags: o.Flags.ActiveColumns(),
		Errors:      o.Errors,
		ErrorTotal:  o.Errors.Total(),
		Unavailable: o.Unavailable,
		Warnings:    o.Warnings,
		Cached:      a.Cached,
		Persisted:   a.Persisted,
		CreatedAt:   a.CreatedAt,
	}

	if err := OutcomeError(o); err != nil {
		msg := MapError(err)
		r.Message = &msg
	}

	t := o.Table
	if t == nil {
		return r
	}

	for _, c := range t.Columns {
		r.Columns = append(r.Columns, ColumnInfo{Name: c.Name, Kind: c.Kind.String()})
	}
	if o.Kind == engine.KindData {
		r.CellColumns = engine.CellVoltageColumns(t)
	}

	view := t
	if opts.Downsample > 1 {
		view = engine.Downsample(t, opts.Downsample)
		r.Downsample = opts.Downsample
	}

	if opts.Series && o.Kind == engine.KindData {
		r.Series = buildSeries(view, append(append([]string{}, seriesColumns...), r.CellColumns...))
	}

	if opts.PreviewRows != 0 {
		head := engine.Head(view, opts.PreviewRows)
		r.Preview = buildPreview(head, head.Rows() < view.Rows())
	}
	return r
}

func buildSeries(t *engine.Table, names []string) map[string][]*float64 {
	series := make(map[string][]*float64)
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok || !col.IsNumeric() {
			continue
		}
		values := make([]*float64, col.Len())
		for i := range values {
			if v, ok := col.Float(i); ok {
				values[i] = &v
			}
		}
		series[name] = values
	}
	if len(series) == 0 {
		return nil
	}
	return series
}

func buildPreview(t *engine.Table, truncated bool) *Preview {
	p := &Preview{
		Columns:   t.Names(),
		Rows:      make([][]any, t.Rows()),
		Truncated: truncated,
	}
	for i := range p.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Value(i)
		}
		p.Rows[i] = row
	}
	return p
}
