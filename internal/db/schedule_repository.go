package db

import (
	"fmt"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	database *gorm.DB
}

func NewScheduleRepository(database *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{database: database}
}

func (repo *ScheduleRepository) Create(schedule *models.Schedule) error {
	if err := repo.database.Create(schedule).Error; err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (repo *ScheduleRepository) CreateTime(scheduleTime *models.ScheduleTime) error {
	if err := repo.database.Create(scheduleTime).Error; err != nil {
		return fmt.Errorf("create schedule time: %w", err)
	}
	return nil
}

func (repo *ScheduleRepository) ListForMedication(medicationID uuid.UUID) ([]models.Schedule, error) {
	schedules := make([]models.Schedule, 0)
	if err := repo.database.
		Where("medication_id = ?", medicationID).
		Order("start_date_ms ASC, id ASC").
		Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

func (repo *ScheduleRepository) ListTimesForSchedule(scheduleID uuid.UUID) ([]models.ScheduleTime, error) {
	times := make([]models.ScheduleTime, 0)
	if err := repo.database.
		Where("schedule_id = ?", scheduleID).
		Order("sort_order ASC, time_local ASC").
		Find(&times).Error; err != nil {
		return nil, fmt.Errorf("list schedule times: %w", err)
	}
	return times, nil
}

// DeleteWithTimes removes a schedule and its times; times first, so the
// cascade never leaves a time pointing at a deleted schedule.
func (repo *ScheduleRepository) DeleteWithTimes(scheduleID uuid.UUID) error {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", scheduleID).Delete(&models.ScheduleTime{}).Error; err != nil {
			return fmt.Errorf("delete schedule times: %w", err)
		}
		if err := tx.Where("id = ?", scheduleID).Delete(&models.Schedule{}).Error; err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete schedule with times: %w", err)
	}
	return nil
}

func (repo *ScheduleRepository) DeleteTime(scheduleTimeID uuid.UUID) error {
	if err := repo.database.Where("id = ?", scheduleTimeID).Delete(&models.ScheduleTime{}).Error; err != nil {
		return fmt.Errorf("delete schedule time: %w", err)
	}
	return nil
}

// ReplaceForMedication implements the wizard's full-replace semantics: all
// existing schedules and times for the medication are dropped and the new
// schedule with its times is written in their place, atomically.
func (repo *ScheduleRepository) ReplaceForMedication(medicationID uuid.UUID, schedule *models.Schedule, times []models.ScheduleTime) error {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("schedule_id IN (?)", tx.Model(&models.Schedule{}).Select("id").Where("medication_id = ?", medicationID)).
			Delete(&models.ScheduleTime{}).Error; err != nil {
			return fmt.Errorf("clear schedule times: %w", err)
		}
		if err := tx.Where("medication_id = ?", medicationID).Delete(&models.Schedule{}).Error; err != nil {
			return fmt.Errorf("clear schedules: %w", err)
		}

		schedule.MedicationID = medicationID
		schedule.FrequencyPerDay = len(times)
		if err := tx.Create(schedule).Error; err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		for index := range times {
			times[index].ScheduleID = schedule.ID
			if err := tx.Create(&times[index]).Error; err != nil {
				return fmt.Errorf("create schedule time: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace schedule for medication: %w", err)
	}
	return nil
}
