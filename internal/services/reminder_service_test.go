package services

import (
	"context"
	"testing"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
)

func TestTriggersForDayCarriesNameDosageAndTime(t *testing.T) {
	gateway := newFakeGateway()
	medication := gateway.addMedication("Lisinopril")
	schedule := gateway.addSchedule(medication, utcDay(2026, time.March, 1), nil, "")
	gateway.addTime(schedule, "08:00", false, 0)
	gateway.addTime(schedule, "12:00", true, 1)
	gateway.addTime(schedule, "20:00", false, 2)

	timeline := newTestTimeline(gateway)
	session := models.Session{UserID: "user", ProfileID: "self"}
	service := NewReminderService(timeline, session, time.UTC, time.Minute, nil)

	triggers, err := service.TriggersForDay(context.Background(), session, utcDay(2026, time.March, 2))
	if err != nil {
		t.Fatalf("triggers failed: %v", err)
	}
	if len(triggers) != 2 {
		t.Fatalf("PRN slots must not trigger reminders, expected 2, got %d", len(triggers))
	}
	if triggers[0].MedicationName != "Lisinopril" || triggers[0].TimeLocal != "08:00" {
		t.Fatalf("unexpected first trigger %+v", triggers[0])
	}
	if triggers[0].Dosage != "1 tablet" {
		t.Fatalf("trigger must carry the dosage text, got %q", triggers[0].Dosage)
	}
	if triggers[1].TimeLocal != "20:00" {
		t.Fatalf("unexpected second trigger %+v", triggers[1])
	}
}

func TestTriggersForDayOutsideScheduleRangeIsEmpty(t *testing.T) {
	gateway := newFakeGateway()
	medication := gateway.addMedication("Lisinopril")
	schedule := gateway.addSchedule(medication, utcDay(2026, time.March, 10), nil, "")
	gateway.addTime(schedule, "08:00", false, 0)

	timeline := newTestTimeline(gateway)
	session := models.Session{UserID: "user", ProfileID: "self"}
	service := NewReminderService(timeline, session, time.UTC, time.Minute, nil)

	triggers, err := service.TriggersForDay(context.Background(), session, utcDay(2026, time.March, 2))
	if err != nil {
		t.Fatalf("triggers failed: %v", err)
	}
	if len(triggers) != 0 {
		t.Fatalf("expected no triggers before schedule start, got %d", len(triggers))
	}
}
