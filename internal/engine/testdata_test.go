package engine

import "strings"

// joinLines joins test fixtures the way a logger writes them.
func joinLines(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

var dataLog = joinLines(
	"BMS Logger v2",
	"SerialNumber = ABC123",
	"Firmware=1.2.3",
	"Note: a=b=c",
	"Sample,DateTime,Voltage,Current,CellVolt1,CellVolt2,SafetyStatus,PFAlert",
	"1,2024-01-01 10:00:00,52000,1000,3300,3310,0x00,0",
	"2,2024-01-01 10:01:30,52100,2000,3305,3300,0x00,0",
	"3,2024-01-01 10:03:00,52200,-1000,3301,3302,0x01,0",
)

var errorLog = joinLines(
	"Device=Pack-7",
	"Time,LogCaption,Error Code,Error String",
	"2024-01-01 10:00:00,Charge,5,Over voltage",
	"2024-01-01 10:00:05,Charge,5,Over voltage",
	"2024-01-01 10:00:10,Discharge,3,Under temperature",
	"2024-01-01 10:00:15,Charge,5,Over voltage",
	"2024-01-01 10:00:20,Idle,3,Under temperature",
)
