package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/engine"
	"github.com/JonMunkholm/bmsview/internal/store"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert("Bad <file>", "Try again", "FILE001"))
	assert.Contains(t, html, "Bad &lt;file&gt;")
	assert.Contains(t, html, `<p class="action">Try again</p>`)
	assert.Contains(t, html, "<small>FILE001</small>")

	html = render(t, ErrorAlert("Oops", "", "ERR000"))
	assert.NotContains(t, html, `class="action"`)
}

func TestPage(t *testing.T) {
	html := render(t, Page("Viewer <1>", false))
	assert.NotContains(t, html, "/api/analyses")
	assert.Contains(t, html, `<script src="`+HTMXScript+`">`)
	assert.Contains(t, html, "<h1>Viewer &lt;1&gt;</h1>")

	assert.Contains(t, render(t, Page("Viewer", true)), `hx-get="/api/analyses"`)
}

func TestReport(t *testing.T) {
	r := core.Report{
		ID:          "abc",
		FileName:    "pack.csv",
		Status:      engine.StatusRecognized,
		Kind:        engine.KindError,
		Rows:        3,
		Metadata:    map[string]string{"b": "2", "a": "1"},
		Errors:      engine.ErrorTally{{Code: "12", Count: 2}, {Code: "7", Count: 1}},
		ErrorTotal:  3,
		Unavailable: []string{"error_tally"},
		Flags:       engine.FlagReport{{Column: "SafetyStatus", Active: true}, {Column: "PFAlert"}},
		Warnings:    []engine.Warning{{Code: "W004", Line: 4, Message: "missing code"}},
		Preview: &core.Preview{
			Columns: []string{"Error Code"},
			Rows:    [][]any{{"12"}, {nil}},
		},
	}

	html := render(t, Report(r))
	assert.Contains(t, html, `id="report-abc"`)
	assert.Contains(t, html, "<dt>a</dt><dd>1</dd><dt>b</dt><dd>2</dd>")
	assert.Contains(t, html, "<tr><td>12</td><td>2</td></tr>")
	assert.Contains(t, html, "<tr><td>Total</td><td>3</td></tr>")
	assert.Contains(t, html, "Not available: error_tally")
	assert.Contains(t, html, `<li class="flag" data-state="active">SafetyStatus: active</li>`)
	assert.Contains(t, html, `<li class="flag" data-state="clear">PFAlert: clear</li>`)
	assert.Contains(t, html, "<summary>1 warnings</summary>")
	assert.Contains(t, html, "W004 line 4: missing code")
	assert.Contains(t, html, "<tr><td>12</td></tr><tr><td></td></tr>")
	assert.NotContains(t, html, "Preview truncated.")

	r.Preview.Truncated = true
	assert.Contains(t, render(t, Reports([]core.Report{r, r})), "Preview truncated.")
}

func TestHistory(t *testing.T) {
	assert.Contains(t, render(t, History(nil)), "No analyses yet.")

	html := render(t, History([]store.Record{{
		FileName:  "pack.csv",
		Status:    "recognized",
		Kind:      "data",
		Rows:      4,
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}}))
	assert.Contains(t, html, "<td>pack.csv</td><td>recognized</td><td>data</td><td>4</td><td>2024-03-01 08:00:00</td>")
}
