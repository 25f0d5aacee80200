package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/engine"
)

// fileReport is one file's entry in the command output.
type fileReport struct {
	Path   string            `json:"path"`
	Report *core.Report      `json:"report,omitempty"`
	Error  *core.UserMessage `json:"error,omitempty"`
}

func writeJSON(w io.Writer, reports []fileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// writeText prints a short human-readable summary of one file.
func writeText(w io.Writer, fr fileReport) error {
	_, err := io.WriteString(w, formatText(fr))
	return err
}

func formatText(fr fileReport) string {
	var b strings.Builder
	if fr.Error != nil {
		fmt.Fprintf(&b, "%s: error: %s (%s)\n", fr.Path, fr.Error.Message, fr.Error.Code)
		return b.String()
	}

	r := fr.Report
	switch r.Status {
	case engine.StatusUnrecognized:
		fmt.Fprintf(&b, "%s: unrecognized (%s)\n", fr.Path, r.Message.Message)
		return b.String()
	case engine.StatusParseFailure:
		fmt.Fprintf(&b, "%s: parse failure at line %d: %s\n", fr.Path, r.HeaderIndex+1, r.Reason)
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %s log, %d rows, header at line %d\n", fr.Path, r.Kind, r.Rows, r.HeaderIndex+1)

	if len(r.Metadata) > 0 {
		keys := make([]string, 0, len(r.Metadata))
		for k := range r.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + r.Metadata[k]
		}
		fmt.Fprintf(&b, "  metadata: %s\n", strings.Join(pairs, ", "))
	}
	if r.TimeAxis != nil {
		state := "comparable"
		if !r.Comparable {
			state = "not comparable"
		}
		fmt.Fprintf(&b, "  time axis: %s (%s)\n", r.TimeAxis.Source, state)
	}
	if len(r.Flags) > 0 {
		active := r.ActiveFlags
		if len(active) == 0 {
			fmt.Fprintf(&b, "  flags: %d checked, none active\n", len(r.Flags))
		} else {
			fmt.Fprintf(&b, "  flags: %d checked, active: %s\n", len(r.Flags), strings.Join(active, ", "))
		}
	}
	if len(r.Errors) > 0 {
		counts := make([]string, len(r.Errors))
		for i, e := range r.Errors {
			counts[i] = fmt.Sprintf("%s x%d", e.Code, e.Count)
		}
		fmt.Fprintf(&b, "  errors: %s (total %d)\n", strings.Join(counts, ", "), r.ErrorTotal)
	}
	if len(r.Unavailable) > 0 {
		fmt.Fprintf(&b, "  unavailable: %s\n", strings.Join(r.Unavailable, ", "))
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", warn)
	}
	return b.String()
}
