package services

import (
	"errors"
	"strings"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidMedicationInput = errors.New("invalid medication input")
	ErrInvalidScheduleInput   = errors.New("invalid schedule input")
	ErrMedicationNotFound     = errors.New("medication not found")
	ErrMedicationSaveFailed   = errors.New("save medication failed")
	ErrMedicationDeleteFailed = errors.New("delete medication failed")
	ErrScheduleSaveFailed     = errors.New("save schedule failed")
)

type MedicationStore interface {
	Create(medication *models.Medication) error
	Update(medication *models.Medication) error
	FindByID(session models.Session, medicationID uuid.UUID) (models.Medication, bool, error)
	ListActive(session models.Session) ([]models.Medication, error)
	SoftDelete(medicationID uuid.UUID, deletedAtMs int64) error
	DeleteCascade(medicationID uuid.UUID) error
}

type ScheduleStore interface {
	ReplaceForMedication(medicationID uuid.UUID, schedule *models.Schedule, times []models.ScheduleTime) error
	ListForMedication(medicationID uuid.UUID) ([]models.Schedule, error)
	ListTimesForSchedule(scheduleID uuid.UUID) ([]models.ScheduleTime, error)
}

type ReminderStore interface {
	ReplaceForMedication(medicationID uuid.UUID, reminders []models.Reminder) error
	DeleteForMedication(medicationID uuid.UUID) error
}

type TimelineInvalidator interface {
	Invalidate()
}

// MedicationService owns medication and schedule mutations. Every write ends
// with a wholesale timeline invalidation: edits can move doses across months
// (an extended end date, say), so targeted invalidation is not worth its
// bookkeeping at this data volume.
type MedicationService struct {
	medications MedicationStore
	schedules   ScheduleStore
	reminders   ReminderStore
	timeline    TimelineInvalidator
	now         func() time.Time
}

func NewMedicationService(medications MedicationStore, schedules ScheduleStore, reminders ReminderStore, timeline TimelineInvalidator) *MedicationService {
	return &MedicationService{
		medications: medications,
		schedules:   schedules,
		reminders:   reminders,
		timeline:    timeline,
		now:         time.Now,
	}
}

func (service *MedicationService) CreateMedication(session models.Session, name string, notes string) (models.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" || session.IsZero() {
		return models.Medication{}, ErrInvalidMedicationInput
	}
	nowMs := service.now().UnixMilli()
	medication := models.Medication{
		UserID:      session.UserID,
		ProfileID:   session.ProfileID,
		Name:        name,
		Notes:       notes,
		CreatedAtMs: nowMs,
		UpdatedAtMs: nowMs,
	}
	if err := service.medications.Create(&medication); err != nil {
		return models.Medication{}, ErrMedicationSaveFailed
	}
	service.timeline.Invalidate()
	return medication, nil
}

func (service *MedicationService) UpdateMedication(session models.Session, medicationID uuid.UUID, name string, notes string) (models.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Medication{}, ErrInvalidMedicationInput
	}
	medication, found, err := service.medications.FindByID(session, medicationID)
	if err != nil {
		return models.Medication{}, ErrMedicationSaveFailed
	}
	if !found {
		return models.Medication{}, ErrMedicationNotFound
	}
	medication.Name = name
	medication.Notes = notes
	medication.UpdatedAtMs = service.now().UnixMilli()
	if err := service.medications.Update(&medication); err != nil {
		return models.Medication{}, ErrMedicationSaveFailed
	}
	service.timeline.Invalidate()
	return medication, nil
}

func (service *MedicationService) ListMedications(session models.Session) ([]models.Medication, error) {
	return service.medications.ListActive(session)
}

// ArchiveMedication soft-deletes: the medication drops out of active lists
// and timelines but its rows stay put. The session must own the medication.
func (service *MedicationService) ArchiveMedication(session models.Session, medicationID uuid.UUID) error {
	_, found, err := service.medications.FindByID(session, medicationID)
	if err != nil {
		return ErrMedicationDeleteFailed
	}
	if !found {
		return ErrMedicationNotFound
	}
	if err := service.medications.SoftDelete(medicationID, service.now().UnixMilli()); err != nil {
		return ErrMedicationDeleteFailed
	}
	service.timeline.Invalidate()
	return nil
}

// DeleteMedication hard-deletes the medication with its schedules, times and
// reminders. Intake logs are retained as history. The session must own the
// medication.
func (service *MedicationService) DeleteMedication(session models.Session, medicationID uuid.UUID) error {
	_, found, err := service.medications.FindByID(session, medicationID)
	if err != nil {
		return ErrMedicationDeleteFailed
	}
	if !found {
		return ErrMedicationNotFound
	}
	if err := service.medications.DeleteCascade(medicationID); err != nil {
		return ErrMedicationDeleteFailed
	}
	service.timeline.Invalidate()
	return nil
}

// ReplaceSchedule applies the wizard's full-replace edit: the medication's
// schedule and times are rewritten, reminder rows are resynced, and the
// timeline caches drop.
func (service *MedicationService) ReplaceSchedule(session models.Session, medicationID uuid.UUID, schedule models.Schedule, times []models.ScheduleTime) (models.Schedule, error) {
	if err := validateSchedule(schedule); err != nil {
		return models.Schedule{}, err
	}
	medication, found, err := service.medications.FindByID(session, medicationID)
	if err != nil {
		return models.Schedule{}, ErrScheduleSaveFailed
	}
	if !found {
		return models.Schedule{}, ErrMedicationNotFound
	}

	normalizeSchedule(&schedule)
	if err := service.schedules.ReplaceForMedication(medicationID, &schedule, times); err != nil {
		return models.Schedule{}, ErrScheduleSaveFailed
	}

	reminders := make([]models.Reminder, 0, len(times))
	for _, scheduleTime := range times {
		if scheduleTime.PRN {
			continue
		}
		reminders = append(reminders, models.Reminder{
			MedicationID:   medicationID,
			ScheduleTimeID: scheduleTime.ID,
			MedicationName: medication.Name,
			Dosage:         scheduleTime.Dosage,
			TimeLocal:      scheduleTime.TimeLocal,
			Enabled:        true,
		})
	}
	if err := service.reminders.ReplaceForMedication(medicationID, reminders); err != nil {
		return models.Schedule{}, ErrScheduleSaveFailed
	}

	service.timeline.Invalidate()
	return schedule, nil
}

func validateSchedule(schedule models.Schedule) error {
	if schedule.StartDateMs == 0 {
		return ErrInvalidScheduleInput
	}
	if !schedule.IsForever {
		if schedule.EndDateMs == nil {
			return ErrInvalidScheduleInput
		}
		if *schedule.EndDateMs < schedule.StartDateMs {
			return ErrInvalidScheduleInput
		}
	}
	return nil
}

// normalizeSchedule keeps the IsForever == (EndDateMs == nil) invariant in
// storage whatever the caller set.
func normalizeSchedule(schedule *models.Schedule) {
	if schedule.IsForever {
		schedule.EndDateMs = nil
	}
	if schedule.Recurrence == "" {
		schedule.Recurrence = models.RecurrenceDaily
	}
	schedule.DaysOfWeek = strings.ToUpper(strings.ReplaceAll(schedule.DaysOfWeek, " ", ""))
}
