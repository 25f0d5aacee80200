package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyErrors(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		want  ErrorTally
	}{
		{
			name:  "descending by count",
			codes: []string{"5", "5", "3", "5", "3"},
			want:  ErrorTally{{Code: "5", Count: 3}, {Code: "3", Count: 2}},
		},
		{
			name:  "ties keep first-seen order",
			codes: []string{"9", "1", "1", "9", "4"},
			want:  ErrorTally{{Code: "9", Count: 2}, {Code: "1", Count: 2}, {Code: "4", Count: 1}},
		},
		{
			name:  "hex codes and missing values",
			codes: []string{"0x1A", "", "0x1A", "0x02"},
			want:  ErrorTally{{Code: "0x1A", Count: 2}, {Code: "0x02", Count: 1}},
		},
		{
			name:  "no rows",
			codes: nil,
			want:  ErrorTally{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{"Idx,Error Code"}
			for i, c := range tt.codes {
				lines = append(lines, string(rune('a'+i))+","+c)
			}
			table := parseFixture(t, lines...)

			got, warnings := TallyErrors(table)
			assert.Empty(t, warnings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTallyErrors_MissingColumn(t *testing.T) {
	table := parseFixture(t, "Time,LogCaption", "2024-01-01 00:00:00,x")

	got, warnings := TallyErrors(table)
	assert.Empty(t, got)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnNoErrorCode, warnings[0].Code)
}

func TestErrorTally_Total(t *testing.T) {
	tally := ErrorTally{{Code: "1", Count: 2}, {Code: "2", Count: 3}}
	assert.Equal(t, 5, tally.Total())
}
