// Package templates renders the HTML page and HTMX fragments for the web UI.
//
// Components live in the .templ files; the _templ.go files are generated.
package templates

//go:generate templ generate

import (
	"fmt"
	"slices"
)

// HTMXScript is loaded by Page; the Content-Security-Policy must allow it.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.3"

const timeLayout = "2006-01-02 15:04:05"

func flagState(active bool) string {
	if active {
		return "active"
	}
	return "clear"
}

// cellText renders a preview cell; missing values are blank.
func cellText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
