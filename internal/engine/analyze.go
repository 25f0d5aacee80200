package engine

import "fmt"

// Status tags the outcome of analyzing one file.
type Status string

const (
	StatusRecognized   Status = "recognized"
	StatusUnrecognized Status = "unrecognized"
	StatusParseFailure Status = "parse_failure"
)

// Features that can be reported unavailable for a file.
const (
	FeatureElapsed    = "elapsed_minutes"
	FeaturePower      = "power_watts"
	FeatureCellSpread = "cell_spread_mv"
	FeatureFlags      = "flags"
	FeatureErrorTally = "error_tally"
)

// Outcome is the result of analyzing one file. Only the fields relevant to
// Status and Kind are populated.
type Outcome struct {
	FileName string
	Size     int
	Status   Status

	// Reason explains a parse failure.
	Reason string

	Kind        Kind
	HeaderIndex int
	Metadata    map[string]string

	// Table holds the parsed rows plus any derived columns.
	Table *Table

	// TimeAxis is set when elapsed_minutes was derived.
	TimeAxis *TimeAxis

	// Flags is set for data logs.
	Flags FlagReport

	// Errors is set for error logs.
	Errors ErrorTally

	// Unavailable lists features skipped because their inputs are missing.
	Unavailable []string

	Warnings []Warning
}

// Comparable reports whether the outcome has a reliable elapsed time axis.
func (o *Outcome) Comparable() bool {
	return o.TimeAxis != nil && o.TimeAxis.Reliable
}

// Analyze runs the whole pipeline over one file. It never panics and never
// returns an error: every failure is expressed in the Outcome.
func Analyze(fileName string, content []byte) (out Outcome) {
	out = Outcome{
		FileName:    fileName,
		Size:        len(content),
		Kind:        KindUnknown,
		HeaderIndex: -1,
	}

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				FileName:    fileName,
				Size:        len(content),
				Status:      StatusParseFailure,
				Kind:        KindUnknown,
				HeaderIndex: -1,
				Reason:      fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	lines, err := DecodeLines(fileName, content)
	if err != nil {
		out.Status = StatusParseFailure
		out.Reason = err.Error()
		return out
	}

	cls := Classify(lines)
	if !cls.Recognized() {
		out.Status = StatusUnrecognized
		return out
	}
	out.Kind = cls.Kind
	out.HeaderIndex = cls.HeaderIndex
	out.Metadata = cls.Metadata

	table, warnings, err := ParseTable(lines, cls.HeaderIndex)
	out.Warnings = append(out.Warnings, warnings...)
	if err != nil {
		out.Status = StatusParseFailure
		out.Reason = err.Error()
		return out
	}
	out.Status = StatusRecognized

	switch cls.Kind {
	case KindData:
		out.Table = deriveData(table, &out)
	case KindError:
		tally, warnings := TallyErrors(table)
		out.Warnings = append(out.Warnings, warnings...)
		if len(warnings) > 0 {
			out.Unavailable = append(out.Unavailable, FeatureErrorTally)
		}
		out.Errors = tally
		out.Table = table
	}
	return out
}

// deriveData adds the data-log derivations and records what was skipped.
func deriveData(t *Table, out *Outcome) *Table {
	t, axis, warnings, ok := NormalizeTime(t)
	out.Warnings = append(out.Warnings, warnings...)
	if ok {
		out.TimeAxis = &axis
	} else {
		out.Unavailable = append(out.Unavailable, FeatureElapsed)
	}

	t, _ = DeriveScaled(t)

	if withPower, ok := DerivePower(t); ok {
		t = withPower
	} else {
		out.Unavailable = append(out.Unavailable, FeaturePower)
	}

	if withSpread, ok := DeriveCellSpread(t); ok {
		t = withSpread
	} else {
		out.Unavailable = append(out.Unavailable, FeatureCellSpread)
	}

	flags, warnings := DetectFlags(t)
	out.Warnings = append(out.Warnings, warnings...)
	if len(flags) == 0 {
		out.Unavailable = append(out.Unavailable, FeatureFlags)
	}
	out.Flags = flags

	return t
}
