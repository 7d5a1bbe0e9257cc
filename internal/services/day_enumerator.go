package services

import (
	"sort"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
)

// DoseEntry is one row of a day's dose timeline. It is derived on every query
// and never persisted.
type DoseEntry struct {
	MedicationID   uuid.UUID
	MedicationName string
	ScheduleID     uuid.UUID
	ScheduleTimeID uuid.UUID
	TimeLabel      string
	TimestampMs    int64
	Dosage         string
	PRN            bool
	Taken          bool
}

// MonthData carries the month-scoped lookup structures the enumerator reads.
// The month cache fills it; the enumerator itself performs no I/O.
type MonthData struct {
	SchedulesByMedication map[uuid.UUID][]models.Schedule
	TimesBySchedule       map[uuid.UUID][]models.ScheduleTime
	LogsByMedication      map[uuid.UUID][]models.IntakeLog
}

func NewMonthData() MonthData {
	return MonthData{
		SchedulesByMedication: make(map[uuid.UUID][]models.Schedule),
		TimesBySchedule:       make(map[uuid.UUID][]models.ScheduleTime),
		LogsByMedication:      make(map[uuid.UUID][]models.IntakeLog),
	}
}

// EnumerateDay builds the ordered dose timeline for one calendar day.
// Schedules outside their date range or day-of-week filter contribute
// nothing; a malformed time slot lands on midnight instead of failing the
// day; duplicate time slots are kept as-is. The result is sorted by
// timestamp, then medication name, then slot order, so rendering is
// deterministic.
func EnumerateDay(day time.Time, medications []models.Medication, data MonthData, location *time.Location) []DoseEntry {
	midnight, nextMidnight := DayRangeMs(day, location)
	dayStart := DateAtLocation(day, location)

	entries := make([]DoseEntry, 0)
	for _, medication := range medications {
		logs := data.LogsByMedication[medication.ID]
		for _, schedule := range data.SchedulesByMedication[medication.ID] {
			if !ScheduleAppliesTo(schedule, dayStart, location) {
				continue
			}
			for _, scheduleTime := range data.TimesBySchedule[schedule.ID] {
				hour, minute := ParseTimeLocal(scheduleTime.TimeLocal)
				year, month, dayOfMonth := dayStart.Date()
				timestamp := time.Date(year, month, dayOfMonth, hour, minute, 0, 0, dayStart.Location())

				entries = append(entries, DoseEntry{
					MedicationID:   medication.ID,
					MedicationName: medication.Name,
					ScheduleID:     schedule.ID,
					ScheduleTimeID: scheduleTime.ID,
					TimeLabel:      scheduleTime.TimeLocal,
					TimestampMs:    timestamp.UnixMilli(),
					Dosage:         scheduleTime.Dosage,
					PRN:            scheduleTime.PRN,
					Taken:          intakeLoggedWithin(logs, scheduleTime.ID, midnight, nextMidnight),
				})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TimestampMs != entries[j].TimestampMs {
			return entries[i].TimestampMs < entries[j].TimestampMs
		}
		return entries[i].MedicationName < entries[j].MedicationName
	})
	return entries
}

func intakeLoggedWithin(logs []models.IntakeLog, scheduleTimeID uuid.UUID, fromMs int64, toMs int64) bool {
	for _, intakeLog := range logs {
		if intakeLog.ScheduleTimeID != scheduleTimeID {
			continue
		}
		if intakeLog.Status != models.IntakeStatusTaken {
			continue
		}
		if intakeLog.TakenAtMs >= fromMs && intakeLog.TakenAtMs < toMs {
			return true
		}
	}
	return false
}
