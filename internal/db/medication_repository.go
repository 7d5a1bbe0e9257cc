package db

import (
	"fmt"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicationRepository struct {
	database *gorm.DB
}

func NewMedicationRepository(database *gorm.DB) *MedicationRepository {
	return &MedicationRepository{database: database}
}

func (repo *MedicationRepository) Create(medication *models.Medication) error {
	if err := repo.database.Create(medication).Error; err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

func (repo *MedicationRepository) Update(medication *models.Medication) error {
	if err := repo.database.Save(medication).Error; err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	return nil
}

// FindByID looks a medication up within the session's ownership scope, so a
// caller can never resolve (and then mutate) another owner's row by id alone.
func (repo *MedicationRepository) FindByID(session models.Session, medicationID uuid.UUID) (models.Medication, bool, error) {
	medication := models.Medication{}
	result := repo.database.
		Where("id = ? AND user_id = ? AND profile_id = ?", medicationID, session.UserID, session.ProfileID).
		Limit(1).
		Find(&medication)
	if result.Error != nil {
		return models.Medication{}, false, fmt.Errorf("find medication: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Medication{}, false, nil
	}
	return medication, true, nil
}

func (repo *MedicationRepository) ListActive(session models.Session) ([]models.Medication, error) {
	medications := make([]models.Medication, 0)
	if err := repo.database.
		Where("user_id = ? AND profile_id = ? AND is_deleted = ?", session.UserID, session.ProfileID, false).
		Order("name ASC, id ASC").
		Find(&medications).Error; err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return medications, nil
}

func (repo *MedicationRepository) SoftDelete(medicationID uuid.UUID, deletedAtMs int64) error {
	if err := repo.database.
		Model(&models.Medication{}).
		Where("id = ?", medicationID).
		Updates(map[string]any{"is_deleted": true, "updated_at_ms": deletedAtMs}).Error; err != nil {
		return fmt.Errorf("soft delete medication: %w", err)
	}
	return nil
}

// DeleteCascade hard-deletes a medication with its schedules, schedule times
// and reminders in one transaction. Intake logs are retained as history; they
// keep their schedule_time_id and simply stop resolving to a live time. Times
// go first so the schedule foreign keys never dangle mid-cascade, and every
// step is idempotent on not-found, so a failed cascade can be retried whole.
func (repo *MedicationRepository) DeleteCascade(medicationID uuid.UUID) error {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("schedule_id IN (?)", tx.Model(&models.Schedule{}).Select("id").Where("medication_id = ?", medicationID)).
			Delete(&models.ScheduleTime{}).Error; err != nil {
			return fmt.Errorf("delete schedule times: %w", err)
		}
		if err := tx.Where("medication_id = ?", medicationID).Delete(&models.Schedule{}).Error; err != nil {
			return fmt.Errorf("delete schedules: %w", err)
		}
		if err := tx.Where("medication_id = ?", medicationID).Delete(&models.Reminder{}).Error; err != nil {
			return fmt.Errorf("delete reminders: %w", err)
		}
		if err := tx.Where("id = ?", medicationID).Delete(&models.Medication{}).Error; err != nil {
			return fmt.Errorf("delete medication: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cascade delete medication: %w", err)
	}
	return nil
}
