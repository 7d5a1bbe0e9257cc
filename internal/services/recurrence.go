package services

import (
	"strings"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
)

// Monday-first ISO weekday codes.
var weekdayCodes = map[time.Weekday]string{
	time.Monday:    "MON",
	time.Tuesday:   "TUE",
	time.Wednesday: "WED",
	time.Thursday:  "THU",
	time.Friday:    "FRI",
	time.Saturday:  "SAT",
	time.Sunday:    "SUN",
}

// WeekdayCode returns the 3-letter uppercase code for a day.
func WeekdayCode(day time.Time) string {
	return weekdayCodes[day.Weekday()]
}

// ScheduleAppliesTo reports whether a schedule produces doses on the given
// calendar day. It is pure and total: an unknown code in the day-of-week
// filter never matches, it never errors. The end date is inclusive.
func ScheduleAppliesTo(schedule models.Schedule, day time.Time, location *time.Location) bool {
	target := DateAtLocation(day, location)

	start := DateAtLocation(time.UnixMilli(schedule.StartDateMs), location)
	if target.Before(start) {
		return false
	}

	if !schedule.IsForever && schedule.EndDateMs != nil {
		lastDayEnd := DateAtLocation(time.UnixMilli(*schedule.EndDateMs), location).AddDate(0, 0, 1)
		if !target.Before(lastDayEnd) {
			return false
		}
	}

	codes := schedule.DayCodes()
	if len(codes) == 0 {
		return true
	}
	targetCode := WeekdayCode(target)
	for _, code := range codes {
		if strings.EqualFold(code, targetCode) {
			return true
		}
	}
	return false
}
