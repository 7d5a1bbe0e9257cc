package db

import (
	"fmt"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderRepository struct {
	database *gorm.DB
}

func NewReminderRepository(database *gorm.DB) *ReminderRepository {
	return &ReminderRepository{database: database}
}

func (repo *ReminderRepository) ListForMedication(medicationID uuid.UUID) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.
		Where("medication_id = ?", medicationID).
		Order("time_local ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// ReplaceForMedication rewrites the reminder rows to match the medication's
// current schedule times.
func (repo *ReminderRepository) ReplaceForMedication(medicationID uuid.UUID, reminders []models.Reminder) error {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medication_id = ?", medicationID).Delete(&models.Reminder{}).Error; err != nil {
			return fmt.Errorf("clear reminders: %w", err)
		}
		for index := range reminders {
			reminders[index].MedicationID = medicationID
			if err := tx.Create(&reminders[index]).Error; err != nil {
				return fmt.Errorf("create reminder: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace reminders: %w", err)
	}
	return nil
}

func (repo *ReminderRepository) DeleteForMedication(medicationID uuid.UUID) error {
	if err := repo.database.Where("medication_id = ?", medicationID).Delete(&models.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminders: %w", err)
	}
	return nil
}
