package catalog

import "fmt"

// Shift is a fixed two-hour exam window. Times use the "15:04:05" layout.
type Shift struct {
	Code      string `json:"code"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

const (
	firstShiftHour = 7
	shiftCount     = 7
	shiftHours     = 2
)

// StandardShifts returns the seven shifts seeded into every store:
// code "1" 07:00:00-09:00:00 through code "7" 19:00:00-21:00:00.
func StandardShifts() []Shift {
	shifts := make([]Shift, 0, shiftCount)
	for i := 0; i < shiftCount; i++ {
		start := firstShiftHour + i*shiftHours
		shifts = append(shifts, Shift{
			Code:      fmt.Sprintf("%d", i+1),
			StartTime: fmt.Sprintf("%02d:00:00", start),
			EndTime:   fmt.Sprintf("%02d:00:00", start+shiftHours),
		})
	}
	return shifts
}
