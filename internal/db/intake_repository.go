package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntakeRepository struct {
	database *gorm.DB
}

func NewIntakeRepository(database *gorm.DB) *IntakeRepository {
	return &IntakeRepository{database: database}
}

// Record appends one intake event. The caller assigns the id, and a retry of
// the same event reuses it, so hitting the primary key on a replay means the
// earlier attempt already landed and the retry can report success.
func (repo *IntakeRepository) Record(intakeLog *models.IntakeLog) error {
	if intakeLog.ID == uuid.Nil {
		intakeLog.ID = uuid.New()
	}
	err := repo.database.Create(intakeLog).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err) {
		return nil
	}
	return fmt.Errorf("record intake: %w", err)
}

// ListForMedicationRange loads the intake logs for one medication whose
// timestamps fall inside [fromMs, toMs), joining through the medication's
// live schedules and times.
func (repo *IntakeRepository) ListForMedicationRange(medicationID uuid.UUID, fromMs int64, toMs int64) ([]models.IntakeLog, error) {
	logs := make([]models.IntakeLog, 0)
	if err := repo.database.
		Joins("JOIN medication_schedule_times ON medication_schedule_times.id = medication_intake_logs.schedule_time_id").
		Joins("JOIN medication_schedules ON medication_schedules.id = medication_schedule_times.schedule_id").
		Where("medication_schedules.medication_id = ?", medicationID).
		Where("medication_intake_logs.taken_at_ms >= ? AND medication_intake_logs.taken_at_ms < ?", fromMs, toMs).
		Order("medication_intake_logs.taken_at_ms ASC, medication_intake_logs.id ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list intake logs: %w", err)
	}
	return logs, nil
}

// isUniqueConstraintError matches only a duplicate intake-log primary key.
// Other constraint violations (NOT NULL, foreign keys) must surface so a
// dropped intake is never reported as recorded.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed: medication_intake_logs.id")
}
