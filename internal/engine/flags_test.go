package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFlags(t *testing.T) {
	table := parseFixture(t,
		"Sample,SafetyStatus,PFStatus,OpStatus,ChargeAlert,Voltage,StatCount",
		"1,0x00,0000,0,0.0,1,",
		"2,0x00,00,0,0.0,1,",
		"3,0x01,0x0,5,0.5,1,",
	)

	report, warnings := DetectFlags(table)
	assert.Empty(t, warnings)
	assert.Equal(t, FlagReport{
		{Column: "SafetyStatus", Active: true},
		{Column: "PFStatus", Active: false},
		{Column: "OpStatus", Active: true},
		{Column: "ChargeAlert", Active: true},
		{Column: "StatCount", Active: false},
	}, report)

	assert.Equal(t, []string{"SafetyStatus", "OpStatus", "ChargeAlert"}, report.ActiveColumns())

	active, found := report.Active("PFStatus")
	assert.True(t, found)
	assert.False(t, active)

	_, found = report.Active("Voltage")
	assert.False(t, found)
}

func TestDetectFlags_ZeroAliases(t *testing.T) {
	for alias := range ZeroAliases {
		table := parseFixture(t, "Status", "0x0", " "+alias+" ")
		report, _ := DetectFlags(table)
		require.Len(t, report, 1)
		assert.False(t, report[0].Active, "alias %q", alias)
	}
}

func TestDetectFlags_CaseSensitive(t *testing.T) {
	table := parseFixture(t, "status,ALERT,alertLevel", "1,1,1")
	report, _ := DetectFlags(table)
	assert.Empty(t, report)
}

func TestDetectFlags_UnexpectedShape(t *testing.T) {
	stamps := &Column{
		Name:  "StatTime",
		Kind:  ColumnTime,
		Times: []time.Time{time.Unix(0, 0)},
		Valid: []bool{true},
	}
	status := &Column{
		Name:  "SafetyStatus",
		Kind:  ColumnInt,
		Ints:  []int64{4},
		Valid: []bool{true},
	}
	table, err := NewTable(stamps, status)
	require.NoError(t, err)

	report, warnings := DetectFlags(table)
	assert.Equal(t, FlagReport{
		{Column: "StatTime", Active: false},
		{Column: "SafetyStatus", Active: true},
	}, report)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnFlagShape, warnings[0].Code)
	assert.Equal(t, "StatTime", warnings[0].Column)
}
