package services

import (
	"testing"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
)

type timelineFixture struct {
	medications []models.Medication
	data        MonthData
}

func newTimelineFixture() *timelineFixture {
	return &timelineFixture{data: NewMonthData()}
}

func (fixture *timelineFixture) medication(name string) models.Medication {
	medication := models.Medication{ID: uuid.New(), Name: name}
	fixture.medications = append(fixture.medications, medication)
	return medication
}

func (fixture *timelineFixture) schedule(medication models.Medication, schedule models.Schedule) models.Schedule {
	schedule.ID = uuid.New()
	schedule.MedicationID = medication.ID
	fixture.data.SchedulesByMedication[medication.ID] = append(fixture.data.SchedulesByMedication[medication.ID], schedule)
	return schedule
}

func (fixture *timelineFixture) time(schedule models.Schedule, timeLocal string, prn bool) models.ScheduleTime {
	scheduleTime := models.ScheduleTime{
		ID:         uuid.New(),
		ScheduleID: schedule.ID,
		TimeLocal:  timeLocal,
		Dosage:     "1 tablet",
		PRN:        prn,
		SortOrder:  len(fixture.data.TimesBySchedule[schedule.ID]),
	}
	fixture.data.TimesBySchedule[schedule.ID] = append(fixture.data.TimesBySchedule[schedule.ID], scheduleTime)
	return scheduleTime
}

func (fixture *timelineFixture) takenLog(medication models.Medication, scheduleTime models.ScheduleTime, takenAt time.Time) {
	fixture.data.LogsByMedication[medication.ID] = append(fixture.data.LogsByMedication[medication.ID], models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: scheduleTime.ID,
		TakenAtMs:      takenAt.UnixMilli(),
		Status:         models.IntakeStatusTaken,
	})
}

func TestEnumerateDayForeverScheduleTwoTimes(t *testing.T) {
	fixture := newTimelineFixture()
	startDay := utcDay(2026, time.March, 2)
	medication := fixture.medication("Lisinopril")
	schedule := fixture.schedule(medication, foreverSchedule(startDay, ""))
	fixture.time(schedule, "08:00", false)
	fixture.time(schedule, "20:00", false)

	onStart := EnumerateDay(startDay, fixture.medications, fixture.data, time.UTC)
	if len(onStart) != 2 {
		t.Fatalf("expected 2 entries on start day, got %d", len(onStart))
	}
	if onStart[0].TimeLabel != "08:00" || onStart[1].TimeLabel != "20:00" {
		t.Fatalf("expected 08:00 then 20:00, got %s then %s", onStart[0].TimeLabel, onStart[1].TimeLabel)
	}

	beforeStart := EnumerateDay(startDay.AddDate(0, 0, -1), fixture.medications, fixture.data, time.UTC)
	if len(beforeStart) != 0 {
		t.Fatalf("expected no entries before start day, got %d", len(beforeStart))
	}
}

func TestEnumerateDayBoundedWeekdayFilterAcrossWeek(t *testing.T) {
	fixture := newTimelineFixture()
	monday := utcDay(2026, time.March, 2)
	sunday := monday.AddDate(0, 0, 6)
	medication := fixture.medication("Metformin")
	schedule := fixture.schedule(medication, boundedSchedule(monday, sunday, "MON,WED,FRI"))
	fixture.time(schedule, "09:00", false)

	for offset := 0; offset < 7; offset++ {
		entries := EnumerateDay(monday.AddDate(0, 0, offset), fixture.medications, fixture.data, time.UTC)
		expectDose := offset == 0 || offset == 2 || offset == 4
		if expectDose && len(entries) != 1 {
			t.Fatalf("offset %d: expected 1 entry, got %d", offset, len(entries))
		}
		if !expectDose && len(entries) != 0 {
			t.Fatalf("offset %d: expected no entries, got %d", offset, len(entries))
		}
	}
}

func TestEnumerateDayMalformedTimeDefaultsToMidnightWithoutBlankingDay(t *testing.T) {
	fixture := newTimelineFixture()
	day := utcDay(2026, time.March, 2)
	medication := fixture.medication("Lisinopril")
	schedule := fixture.schedule(medication, foreverSchedule(day, ""))
	fixture.time(schedule, "bad", false)
	fixture.time(schedule, "08:00", false)

	entries := EnumerateDay(day, fixture.medications, fixture.data, time.UTC)
	if len(entries) != 2 {
		t.Fatalf("one malformed row must not blank the day, got %d entries", len(entries))
	}
	if entries[0].TimestampMs != day.UnixMilli() {
		t.Fatalf("malformed time should land on midnight, got %d", entries[0].TimestampMs)
	}
	if entries[1].TimeLabel != "08:00" {
		t.Fatalf("valid row should survive, got %s", entries[1].TimeLabel)
	}
}

func TestEnumerateDaySortsByTimestampThenMedicationName(t *testing.T) {
	fixture := newTimelineFixture()
	day := utcDay(2026, time.March, 2)

	zyrtec := fixture.medication("Zyrtec")
	aspirin := fixture.medication("Aspirin")
	zyrtecSchedule := fixture.schedule(zyrtec, foreverSchedule(day, ""))
	aspirinSchedule := fixture.schedule(aspirin, foreverSchedule(day, ""))
	fixture.time(zyrtecSchedule, "08:00", false)
	fixture.time(zyrtecSchedule, "07:00", false)
	fixture.time(aspirinSchedule, "08:00", false)

	entries := EnumerateDay(day, fixture.medications, fixture.data, time.UTC)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].TimeLabel != "07:00" {
		t.Fatalf("expected earliest time first, got %s", entries[0].TimeLabel)
	}
	if entries[1].MedicationName != "Aspirin" || entries[2].MedicationName != "Zyrtec" {
		t.Fatalf("expected name tie-break Aspirin before Zyrtec, got %s then %s",
			entries[1].MedicationName, entries[2].MedicationName)
	}
}

func TestEnumerateDayKeepsDuplicateTimes(t *testing.T) {
	fixture := newTimelineFixture()
	day := utcDay(2026, time.March, 2)
	medication := fixture.medication("Lisinopril")
	schedule := fixture.schedule(medication, foreverSchedule(day, ""))
	fixture.time(schedule, "08:00", false)
	fixture.time(schedule, "08:00", false)

	entries := EnumerateDay(day, fixture.medications, fixture.data, time.UTC)
	if len(entries) != 2 {
		t.Fatalf("duplicate times are a data anomaly, not filtered; got %d entries", len(entries))
	}
}

func TestEnumerateDayScheduleWithoutTimesContributesNothing(t *testing.T) {
	fixture := newTimelineFixture()
	day := utcDay(2026, time.March, 2)
	medication := fixture.medication("Lisinopril")
	fixture.schedule(medication, foreverSchedule(day, ""))

	entries := EnumerateDay(day, fixture.medications, fixture.data, time.UTC)
	if len(entries) != 0 {
		t.Fatalf("expected no entries for schedule without times, got %d", len(entries))
	}
}

func TestEnumerateDayMarksTakenOnlyInsideDayWindow(t *testing.T) {
	fixture := newTimelineFixture()
	day := utcDay(2026, time.March, 2)
	medication := fixture.medication("Lisinopril")
	schedule := fixture.schedule(medication, foreverSchedule(day.AddDate(0, 0, -5), ""))
	scheduleTime := fixture.time(schedule, "08:00", false)

	// Taken yesterday: today must not count it.
	fixture.takenLog(medication, scheduleTime, day.AddDate(0, 0, -1).Add(8*time.Hour))

	entries := EnumerateDay(day, fixture.medications, fixture.data, time.UTC)
	if len(entries) != 1 || entries[0].Taken {
		t.Fatalf("expected untaken entry today, got %+v", entries)
	}

	fixture.takenLog(medication, scheduleTime, day.Add(9*time.Hour))
	entries = EnumerateDay(day, fixture.medications, fixture.data, time.UTC)
	if !entries[0].Taken {
		t.Fatalf("expected entry taken after log within [midnight, midnight+24h)")
	}
}

func TestParseTimeLocalFallsBackToMidnight(t *testing.T) {
	cases := map[string][2]int{
		"08:30":  {8, 30},
		"23:59":  {23, 59},
		"0:05":   {0, 5},
		"bad":    {0, 0},
		"25:00":  {0, 0},
		"12:61":  {0, 0},
		"":       {0, 0},
		"12:3a":  {0, 0},
		" 07:15": {7, 15},
	}
	for input, expected := range cases {
		hour, minute := ParseTimeLocal(input)
		if hour != expected[0] || minute != expected[1] {
			t.Fatalf("ParseTimeLocal(%q): expected %02d:%02d, got %02d:%02d",
				input, expected[0], expected[1], hour, minute)
		}
	}
}
