package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const IntakeStatusTaken = "taken"

// IntakeLog is an append-only record of one actual intake event. Rows are
// retained even after their schedule time is deleted; compliance queries only
// ever reach logs through live schedules.
type IntakeLog struct {
	ID             uuid.UUID `gorm:"primaryKey"`
	ScheduleTimeID uuid.UUID `gorm:"index;not null"`
	TakenAtMs      int64     `gorm:"index;not null"`
	Status         string    `gorm:"not null;default:taken"`
	ActualAmount   *float64
	ActualUnit     string
	Notes          string
}

func (IntakeLog) TableName() string { return "medication_intake_logs" }

func (intakeLog *IntakeLog) BeforeCreate(tx *gorm.DB) error {
	if intakeLog.ID == uuid.Nil {
		intakeLog.ID = uuid.New()
	}
	return nil
}
