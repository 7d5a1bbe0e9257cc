package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder carries the data a notification needs for one schedule time.
// Delivery itself belongs to the platform notification layer.
type Reminder struct {
	ID             uuid.UUID `gorm:"primaryKey"`
	MedicationID   uuid.UUID `gorm:"index;not null"`
	ScheduleTimeID uuid.UUID `gorm:"index;not null"`
	MedicationName string    `gorm:"not null"`
	Dosage         string
	TimeLocal      string `gorm:"not null"`
	Enabled        bool   `gorm:"not null;default:true"`
}

func (reminder *Reminder) BeforeCreate(tx *gorm.DB) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	return nil
}
