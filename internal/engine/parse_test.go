package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable_InfersKinds(t *testing.T) {
	lines := []string{
		"Sample,Voltage,Temp,SafetyStatus,Label,Blank",
		"1,52000,25.5,0x00,idle,",
		"2,,26,0x01, charge ,",
		"3,52100,NaN,00,idle,",
	}

	table, warnings, err := ParseTable(lines, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 3, table.Rows())

	kinds := map[string]ColumnKind{}
	for _, c := range table.Columns {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, map[string]ColumnKind{
		"Sample":       ColumnInt,
		"Voltage":      ColumnInt,
		"Temp":         ColumnFloat,
		"SafetyStatus": ColumnText,
		"Label":        ColumnText,
		"Blank":        ColumnInt,
	}, kinds)

	voltage, _ := table.Column("Voltage")
	assert.Equal(t, []bool{true, false, true}, voltage.Valid, "empty cell is missing, not zero")

	temp, _ := table.Column("Temp")
	assert.False(t, temp.Valid[2])

	label, _ := table.Column("Label")
	v, ok := label.Text(1)
	require.True(t, ok)
	assert.Equal(t, "charge", v)
}

func TestParseTable_TrimsAndKeepsDuplicateNames(t *testing.T) {
	lines := []string{
		" Sample , Voltage ,Voltage",
		"1,10,20",
	}

	table, warnings, err := ParseTable(lines, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample", "Voltage", "Voltage"}, table.Names())

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnDuplicateColumn, warnings[0].Code)
	assert.Equal(t, "Voltage", warnings[0].Column)

	first, _ := table.Column("Voltage")
	assert.Equal(t, int64(10), first.Ints[0])
}

func TestParseTable_DropsMalformedRows(t *testing.T) {
	lines := []string{
		"meta=1",
		"Sample,DateTime,Voltage",
		"1,2024-01-01 00:00:00,100",
		"2,2024-01-01 00:00:01",
		"3,2024-01-01 00:00:02,300,extra",
		"4,2024-01-01 00:00:03,400",
	}

	table, warnings, err := ParseTable(lines, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())

	require.Len(t, warnings, 2)
	assert.Equal(t, WarnMalformedRow, warnings[0].Code)
	assert.Equal(t, 4, warnings[0].Line)
	assert.Equal(t, WarnMalformedRow, warnings[1].Code)
	assert.Equal(t, 5, warnings[1].Line)

	sample, _ := table.Column("Sample")
	assert.Equal(t, []int64{1, 4}, sample.Ints)
}

func TestParseTable_StrayQuoteDropsOnlyItsRow(t *testing.T) {
	lines := []string{
		"Sample,DateTime,Voltage,Current",
		"1,2024-01-01 00:00:00,100,10",
		`2,"2024-01-01 00:00:01,200,20`,
		"3,2024-01-01 00:00:02,300,30",
		"4,2024-01-01 00:00:03,400,40",
	}

	table, warnings, err := ParseTable(lines, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Rows())

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnMalformedRow, warnings[0].Code)
	assert.Equal(t, 3, warnings[0].Line)

	sample, _ := table.Column("Sample")
	assert.Equal(t, []int64{1, 3, 4}, sample.Ints)
}

func TestParseTable_QuotedFields(t *testing.T) {
	lines := []string{
		"Time,LogCaption,Error Code,Error String",
		`2024-01-01 00:00:00,Charge,5,"over voltage, cell 3"`,
		"",
		`2024-01-01 00:00:01,Charge,5,plain`,
	}

	table, warnings, err := ParseTable(lines, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 2, table.Rows())

	msg, _ := table.Column("Error String")
	assert.Equal(t, []string{"over voltage, cell 3", "plain"}, msg.Texts)
}

func TestParseTable_TimeOfDay(t *testing.T) {
	lines := []string{
		"Time,LogCaption,Error Code,Error String",
		"12:00:02,x,5,a",
		"12:00:01,x,5,a",
	}

	table, warnings, err := ParseTable(lines, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	ts, ok := table.TimeColumn()
	require.True(t, ok)
	assert.Equal(t, []bool{true, true}, ts.Valid)

	first, _ := ts.Time(0)
	assert.Equal(t, 12, first.Hour())
	assert.Equal(t, 1, first.Second())
}

func TestParseTable_EmptyBody(t *testing.T) {
	table, warnings, err := ParseTable([]string{"Sample,DateTime,Voltage"}, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, table.Rows())
	assert.Equal(t, []string{"Sample", "DateTime", "Voltage"}, table.Names())
}

func TestParseTable_SortsByTimeWithMissingLast(t *testing.T) {
	lines := []string{
		"Sample,DateTime",
		"1,2024-01-01 10:00:02",
		"2,garbage",
		"3,2024-01-01 10:00:00",
		"4,",
		"5,2024-01-01 10:00:00",
		"6,2024-01-01 10:00:01.500",
	}

	table, warnings, err := ParseTable(lines, 0)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnBadTimestamp, warnings[0].Code)
	assert.Equal(t, "DateTime", warnings[0].Column)

	sample, _ := table.Column("Sample")
	assert.Equal(t, []int64{3, 5, 6, 1, 2, 4}, sample.Ints)

	ts, ok := table.TimeColumn()
	require.True(t, ok)
	assert.Equal(t, []bool{true, true, true, true, false, false}, ts.Valid)

	got, _ := ts.Time(2)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 1, 500_000_000, time.UTC), got)
}

func TestParseTable_TimeFallback(t *testing.T) {
	lines := []string{
		"Time,LogCaption,Error Code,Error String",
		"01/02/2024 10:00:05,b,1,x",
		"01/02/2024 10:00:00,a,2,y",
	}

	table, _, err := ParseTable(lines, 0)
	require.NoError(t, err)

	ts, ok := table.TimeColumn()
	require.True(t, ok)
	assert.Equal(t, "Time", ts.Name)

	caption, _ := table.Column("LogCaption")
	assert.Equal(t, []string{"a", "b"}, caption.Texts)
}

func TestParseTable_DateTimePreferredOverTime(t *testing.T) {
	lines := []string{
		"Sample,Time,DateTime",
		"1,12,2024-01-01 00:00:01",
		"2,11,2024-01-01 00:00:00",
	}

	table, _, err := ParseTable(lines, 0)
	require.NoError(t, err)

	ts, ok := table.TimeColumn()
	require.True(t, ok)
	assert.Equal(t, "DateTime", ts.Name)

	plain, _ := table.Column("Time")
	assert.Equal(t, ColumnInt, plain.Kind)
	assert.Equal(t, []int64{11, 12}, plain.Ints)
}

func TestParseTable_HeaderOutOfRange(t *testing.T) {
	_, _, err := ParseTable([]string{"a"}, 3)
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	for _, in := range []string{
		"2024-03-05 14:07:09",
		"2024-03-05T14:07:09Z",
		"2024-03-05T14:07:09",
		"2024/03/05 14:07:09",
		"3/5/2024 14:07:09",
		"03/05/2024 2:07:09 PM",
	} {
		got, ok := ParseTimestamp(in)
		if assert.True(t, ok, in) {
			assert.True(t, want.Equal(got), "%s parsed as %v", in, got)
		}
	}

	for in, want := range map[string][3]int{
		"14:07:09":     {14, 7, 9},
		"14:07:09.250": {14, 7, 9},
		"2:07:09 PM":   {14, 7, 9},
	} {
		got, ok := ParseTimestamp(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, [3]int{got.Hour(), got.Minute(), got.Second()}, in)
		}
	}

	_, ok := ParseTimestamp("not a time")
	assert.False(t, ok)
}
