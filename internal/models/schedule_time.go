package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleTime is one time-of-day slot of a schedule. PRN slots ("as needed")
// appear on the timeline but stay out of compliance accounting.
type ScheduleTime struct {
	ID           uuid.UUID `gorm:"primaryKey"`
	ScheduleID   uuid.UUID `gorm:"index;not null"`
	TimeLocal    string    `gorm:"not null"`
	Dosage       string
	DoseAmount   *float64
	DoseUnit     string
	Instructions *string
	PRN          bool `gorm:"not null;default:false"`
	SortOrder    int  `gorm:"not null;default:0"`
}

func (ScheduleTime) TableName() string { return "medication_schedule_times" }

func (scheduleTime *ScheduleTime) BeforeCreate(tx *gorm.DB) error {
	if scheduleTime.ID == uuid.Nil {
		scheduleTime.ID = uuid.New()
	}
	return nil
}
