package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DayRangeMs is DayRange in the epoch-ms representation the storage layer and
// DoseEntry timestamps use.
func DayRangeMs(value time.Time, location *time.Location) (int64, int64) {
	start, end := DayRange(value, location)
	return start.UnixMilli(), end.UnixMilli()
}

func MonthRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	start := time.Date(localized.Year(), localized.Month(), 1, 0, 0, 0, 0, location)
	return start, start.AddDate(0, 1, 0)
}

// MonthKey identifies the (year, month) pair a day belongs to.
func MonthKey(value time.Time, location *time.Location) string {
	day := DateAtLocation(value, location)
	return fmt.Sprintf("%04d-%02d", day.Year(), int(day.Month()))
}

// DayKey is the yyyymmdd key used by the week summary cache.
func DayKey(value time.Time, location *time.Location) string {
	return DateAtLocation(value, location).Format("20060102")
}

// WeekMonday truncates a day to the Monday starting its ISO week.
func WeekMonday(value time.Time, location *time.Location) time.Time {
	day := DateAtLocation(value, location)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseTimeLocal parses an "HH:MM" string. Malformed values fall back to
// midnight so one bad row never blanks a whole day's timeline.
func ParseTimeLocal(timeLocal string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(timeLocal), ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0
	}
	return hour, minute
}
