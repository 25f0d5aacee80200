package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_DataLog(t *testing.T) {
	out := Analyze("pack.log", dataLog)

	require.Equal(t, StatusRecognized, out.Status)
	assert.Equal(t, KindData, out.Kind)
	assert.Equal(t, 4, out.HeaderIndex)
	assert.Equal(t, map[string]string{"SerialNumber": "ABC123", "Firmware": "1.2.3"}, out.Metadata)
	assert.Empty(t, out.Warnings)
	assert.Empty(t, out.Unavailable)
	assert.True(t, out.Comparable())
	assert.Equal(t, len(dataLog), out.Size)

	require.NotNil(t, out.Table)
	assert.Equal(t, 3, out.Table.Rows())
	for _, name := range []string{ElapsedColumn, PowerColumn, VoltsColumn, AmpsColumn, CellSpreadColumn} {
		_, ok := out.Table.Column(name)
		assert.True(t, ok, "missing derived column %s", name)
	}

	elapsed, _ := out.Table.Column(ElapsedColumn)
	assert.Equal(t, []float64{0, 1.5, 3.0}, elapsed.Floats)

	assert.Equal(t, FlagReport{
		{Column: "SafetyStatus", Active: true},
		{Column: "PFAlert", Active: false},
	}, out.Flags)
}

func TestAnalyze_ErrorLog(t *testing.T) {
	out := Analyze("faults.log", errorLog)

	require.Equal(t, StatusRecognized, out.Status)
	assert.Equal(t, KindError, out.Kind)
	assert.Equal(t, 1, out.HeaderIndex)
	assert.Equal(t, map[string]string{"Device": "Pack-7"}, out.Metadata)
	assert.Equal(t, ErrorTally{{Code: "5", Count: 3}, {Code: "3", Count: 2}}, out.Errors)
	assert.Nil(t, out.Flags)
	assert.Nil(t, out.TimeAxis)
	assert.Equal(t, 5, out.Table.Rows())
}

func TestAnalyze_ErrorLogEdgeCases(t *testing.T) {
	content := []byte("Idx,Error Code,Error String\n")
	out := Analyze("odd.log", content)
	require.Equal(t, StatusRecognized, out.Status)
	assert.Empty(t, out.Errors)
	assert.Empty(t, out.Unavailable)

	content = []byte("Time,LogCaption,Error Code ,Error String\n1,a,2,b\n")
	out = Analyze("trimmed.log", content)
	require.Equal(t, StatusRecognized, out.Status)
	assert.Equal(t, ErrorTally{{Code: "2", Count: 1}}, out.Errors)
}

func TestAnalyze_ErrorLogTimeOfDay(t *testing.T) {
	content := []byte("Time,LogCaption,Error Code,Error String\n12:00:01,x,5,a\n12:00:02,x,5,a\n")
	out := Analyze("clock.log", content)

	require.Equal(t, StatusRecognized, out.Status)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, ErrorTally{{Code: "5", Count: 2}}, out.Errors)

	ts, ok := out.Table.TimeColumn()
	require.True(t, ok)
	assert.Equal(t, []bool{true, true}, ts.Valid)
}

func TestAnalyze_Unrecognized(t *testing.T) {
	out := Analyze("notes.txt", []byte("just some text\nwith=metadata\n"))

	assert.Equal(t, StatusUnrecognized, out.Status)
	assert.Equal(t, KindUnknown, out.Kind)
	assert.Equal(t, -1, out.HeaderIndex)
	assert.Nil(t, out.Table)
	assert.Nil(t, out.Metadata)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	out := Analyze("empty.log", nil)
	assert.Equal(t, StatusUnrecognized, out.Status)
}

func TestAnalyze_MissingFeatures(t *testing.T) {
	content := []byte("Sample,DateTime,Temp\n1,2024-01-01 00:00:00,20\n")

	out := Analyze("thin.log", content)
	require.Equal(t, StatusRecognized, out.Status)
	assert.Equal(t, []string{FeaturePower, FeatureCellSpread, FeatureFlags}, out.Unavailable)

	_, ok := out.Table.Column(PowerColumn)
	assert.False(t, ok)
}

func TestAnalyze_MalformedRowKeepsRest(t *testing.T) {
	content := []byte("Sample,DateTime,Voltage,Current\n" +
		"1,2024-01-01 00:00:00,50000,1000\n" +
		"2,2024-01-01 00:00:01,50000\n" +
		"3,2024-01-01 00:00:02,50000,1000\n")

	out := Analyze("gap.log", content)
	require.Equal(t, StatusRecognized, out.Status)
	assert.Equal(t, 2, out.Table.Rows())
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, WarnMalformedRow, out.Warnings[0].Code)
	assert.Equal(t, 3, out.Warnings[0].Line)
}

func TestAnalyze_Concurrent(t *testing.T) {
	const workers = 16

	want := Analyze("pack.log", dataLog)

	var wg sync.WaitGroup
	results := make([]Outcome, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = Analyze(fmt.Sprintf("pack-%d.log", i), dataLog)
			} else {
				results[i] = Analyze(fmt.Sprintf("faults-%d.log", i), errorLog)
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if i%2 == 0 {
			assert.Equal(t, want.Table, got.Table)
			assert.Equal(t, want.Flags, got.Flags)
		} else {
			assert.Equal(t, KindError, got.Kind)
		}
	}
}
