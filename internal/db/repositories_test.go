package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "dosetrack-test.db")
	database, err := OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	return database
}

func seedMedicationWithSchedule(t *testing.T, repos *Repositories, session models.Session, name string, timeLabels ...string) (models.Medication, models.Schedule, []models.ScheduleTime) {
	t.Helper()
	nowMs := time.Now().UnixMilli()
	medication := models.Medication{
		UserID:      session.UserID,
		ProfileID:   session.ProfileID,
		Name:        name,
		CreatedAtMs: nowMs,
		UpdatedAtMs: nowMs,
	}
	if err := repos.Medications.Create(&medication); err != nil {
		t.Fatalf("create medication failed: %v", err)
	}

	schedule := models.Schedule{
		Recurrence:  models.RecurrenceDaily,
		IsForever:   true,
		StartDateMs: nowMs,
	}
	times := make([]models.ScheduleTime, 0, len(timeLabels))
	for order, label := range timeLabels {
		times = append(times, models.ScheduleTime{
			ID:        uuid.New(),
			TimeLocal: label,
			Dosage:    "1 tablet",
			SortOrder: order,
		})
	}
	if err := repos.Schedules.ReplaceForMedication(medication.ID, &schedule, times); err != nil {
		t.Fatalf("replace schedule failed: %v", err)
	}
	return medication, schedule, times
}

func TestOpenSQLiteAppliesMigrationsOnCleanDatabase(t *testing.T) {
	database := openTestDatabase(t)

	for _, table := range []string{
		"medications",
		"medication_schedules",
		"medication_schedule_times",
		"medication_intake_logs",
		"reminders",
	} {
		var count int64
		if err := database.Raw(
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&count).Error; err != nil {
			t.Fatalf("inspect table %s failed: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s after migrations", table)
		}
	}
}

func TestListActiveExcludesSoftDeletedAndOtherOwners(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	owner := models.Session{UserID: "user", ProfileID: "self"}
	other := models.Session{UserID: "someone-else", ProfileID: "self"}

	kept, _, _ := seedMedicationWithSchedule(t, repos, owner, "Lisinopril", "08:00")
	archived, _, _ := seedMedicationWithSchedule(t, repos, owner, "Metformin", "09:00")
	seedMedicationWithSchedule(t, repos, other, "Aspirin", "10:00")

	if err := repos.Medications.SoftDelete(archived.ID, time.Now().UnixMilli()); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	active, err := repos.Medications.ListActive(owner)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != kept.ID {
		t.Fatalf("expected only %s active, got %+v", kept.Name, active)
	}
}

func TestFindByIDIsScopedToTheOwningSession(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	owner := models.Session{UserID: "user", ProfileID: "self"}
	other := models.Session{UserID: "someone-else", ProfileID: "self"}

	medication, _, _ := seedMedicationWithSchedule(t, repos, owner, "Lisinopril", "08:00")

	found, ok, err := repos.Medications.FindByID(owner, medication.ID)
	if err != nil || !ok {
		t.Fatalf("owner lookup failed: ok=%v err=%v", ok, err)
	}
	if found.Name != "Lisinopril" {
		t.Fatalf("expected owner's medication, got %q", found.Name)
	}

	if _, ok, err := repos.Medications.FindByID(other, medication.ID); err != nil || ok {
		t.Fatalf("another session must not resolve the medication, ok=%v err=%v", ok, err)
	}
}

func TestListTimesForScheduleOrdersBySortOrderThenTime(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	session := models.Session{UserID: "user", ProfileID: "self"}

	medication, schedule, _ := seedMedicationWithSchedule(t, repos, session, "Lisinopril")
	_ = medication
	for _, scheduleTime := range []models.ScheduleTime{
		{ScheduleID: schedule.ID, TimeLocal: "20:00", SortOrder: 1},
		{ScheduleID: schedule.ID, TimeLocal: "08:00", SortOrder: 0},
		{ScheduleID: schedule.ID, TimeLocal: "06:00", SortOrder: 1},
	} {
		timeCopy := scheduleTime
		if err := repos.Schedules.CreateTime(&timeCopy); err != nil {
			t.Fatalf("create time failed: %v", err)
		}
	}

	times, err := repos.Schedules.ListTimesForSchedule(schedule.ID)
	if err != nil {
		t.Fatalf("list times failed: %v", err)
	}
	got := make([]string, 0, len(times))
	for _, scheduleTime := range times {
		got = append(got, scheduleTime.TimeLocal)
	}
	expected := []string{"08:00", "06:00", "20:00"}
	for index := range expected {
		if got[index] != expected[index] {
			t.Fatalf("expected order %v, got %v", expected, got)
		}
	}
}

func TestDeleteCascadeRemovesScheduleDataButRetainsIntakeLogs(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	session := models.Session{UserID: "user", ProfileID: "self"}

	medication, schedule, times := seedMedicationWithSchedule(t, repos, session, "Lisinopril", "08:00", "20:00")
	if err := repos.Reminders.ReplaceForMedication(medication.ID, []models.Reminder{
		{ScheduleTimeID: times[0].ID, MedicationName: medication.Name, TimeLocal: "08:00", Enabled: true},
	}); err != nil {
		t.Fatalf("replace reminders failed: %v", err)
	}

	takenAt := time.Now().UnixMilli()
	intakeLog := models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: times[0].ID,
		TakenAtMs:      takenAt,
		Status:         models.IntakeStatusTaken,
	}
	if err := repos.Intakes.Record(&intakeLog); err != nil {
		t.Fatalf("record intake failed: %v", err)
	}

	if err := repos.Medications.DeleteCascade(medication.ID); err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}

	schedules, err := repos.Schedules.ListForMedication(medication.ID)
	if err != nil {
		t.Fatalf("list schedules failed: %v", err)
	}
	if len(schedules) != 0 {
		t.Fatalf("expected no schedules after cascade, got %d", len(schedules))
	}

	remainingTimes, err := repos.Schedules.ListTimesForSchedule(schedule.ID)
	if err != nil {
		t.Fatalf("list times failed: %v", err)
	}
	if len(remainingTimes) != 0 {
		t.Fatalf("expected no times after cascade, got %d", len(remainingTimes))
	}

	reminders, err := repos.Reminders.ListForMedication(medication.ID)
	if err != nil {
		t.Fatalf("list reminders failed: %v", err)
	}
	if len(reminders) != 0 {
		t.Fatalf("expected no reminders after cascade, got %d", len(reminders))
	}

	var retained int64
	if err := database.Model(&models.IntakeLog{}).Where("id = ?", intakeLog.ID).Count(&retained).Error; err != nil {
		t.Fatalf("count intake logs failed: %v", err)
	}
	if retained != 1 {
		t.Fatalf("intake logs are history and must survive the cascade, found %d", retained)
	}
}

func TestRecordIntakeRetryWithSameIDIsIdempotent(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	session := models.Session{UserID: "user", ProfileID: "self"}

	_, _, times := seedMedicationWithSchedule(t, repos, session, "Lisinopril", "08:00")
	intakeLog := models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: times[0].ID,
		TakenAtMs:      time.Now().UnixMilli(),
		Status:         models.IntakeStatusTaken,
	}
	if err := repos.Intakes.Record(&intakeLog); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	replay := intakeLog
	if err := repos.Intakes.Record(&replay); err != nil {
		t.Fatalf("replay with same id must be absorbed, got %v", err)
	}

	var count int64
	if err := database.Model(&models.IntakeLog{}).Where("schedule_time_id = ?", times[0].ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single log row after replay, got %d", count)
	}
}

func TestIsUniqueConstraintErrorMatchesOnlyDuplicateIntakeID(t *testing.T) {
	if !isUniqueConstraintError(errors.New("UNIQUE constraint failed: medication_intake_logs.id")) {
		t.Fatalf("duplicate intake id must be absorbed")
	}
	for _, err := range []error{
		nil,
		errors.New("NOT NULL constraint failed: medication_intake_logs.schedule_time_id"),
		errors.New("FOREIGN KEY constraint failed"),
		errors.New("UNIQUE constraint failed: medications.id"),
	} {
		if isUniqueConstraintError(err) {
			t.Fatalf("%v must surface, not read as a duplicate intake", err)
		}
	}
}

func TestListForMedicationRangeJoinsThroughLiveSchedules(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	session := models.Session{UserID: "user", ProfileID: "self"}

	medication, _, times := seedMedicationWithSchedule(t, repos, session, "Lisinopril", "08:00")
	otherMedication, _, otherTimes := seedMedicationWithSchedule(t, repos, session, "Metformin", "09:00")
	_ = otherMedication

	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	inRange := models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: times[0].ID,
		TakenAtMs:      monthStart.AddDate(0, 0, 9).UnixMilli(),
		Status:         models.IntakeStatusTaken,
	}
	outOfRange := models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: times[0].ID,
		TakenAtMs:      monthStart.AddDate(0, 1, 3).UnixMilli(),
		Status:         models.IntakeStatusTaken,
	}
	foreign := models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: otherTimes[0].ID,
		TakenAtMs:      monthStart.AddDate(0, 0, 9).UnixMilli(),
		Status:         models.IntakeStatusTaken,
	}
	for _, log := range []*models.IntakeLog{&inRange, &outOfRange, &foreign} {
		if err := repos.Intakes.Record(log); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	logs, err := repos.Intakes.ListForMedicationRange(
		medication.ID,
		monthStart.UnixMilli(),
		monthStart.AddDate(0, 1, 0).UnixMilli(),
	)
	if err != nil {
		t.Fatalf("range query failed: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != inRange.ID {
		t.Fatalf("expected only the in-range log for this medication, got %+v", logs)
	}
}

func TestReplaceForMedicationSwapsScheduleWholesale(t *testing.T) {
	database := openTestDatabase(t)
	repos := NewRepositories(database)
	session := models.Session{UserID: "user", ProfileID: "self"}

	medication, firstSchedule, _ := seedMedicationWithSchedule(t, repos, session, "Lisinopril", "08:00", "20:00")

	replacement := models.Schedule{
		Recurrence:  models.RecurrenceDaily,
		IsForever:   true,
		StartDateMs: time.Now().UnixMilli(),
		DaysOfWeek:  "MON,WED,FRI",
	}
	newTimes := []models.ScheduleTime{
		{ID: uuid.New(), TimeLocal: "10:00", Dosage: "5mg", SortOrder: 0},
	}
	if err := repos.Schedules.ReplaceForMedication(medication.ID, &replacement, newTimes); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	schedules, err := repos.Schedules.ListForMedication(medication.ID)
	if err != nil {
		t.Fatalf("list schedules failed: %v", err)
	}
	if len(schedules) != 1 || schedules[0].ID == firstSchedule.ID {
		t.Fatalf("expected single replacement schedule, got %+v", schedules)
	}
	if schedules[0].FrequencyPerDay != 1 {
		t.Fatalf("expected frequency cache updated to 1, got %d", schedules[0].FrequencyPerDay)
	}

	times, err := repos.Schedules.ListTimesForSchedule(schedules[0].ID)
	if err != nil {
		t.Fatalf("list times failed: %v", err)
	}
	if len(times) != 1 || times[0].TimeLocal != "10:00" {
		t.Fatalf("expected replacement times only, got %+v", times)
	}
}
