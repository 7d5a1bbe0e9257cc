package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Medication struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	UserID      string    `gorm:"index:idx_medications_owner;not null"`
	ProfileID   string    `gorm:"index:idx_medications_owner;not null"`
	Name        string    `gorm:"not null"`
	Notes       string
	IsDeleted   bool  `gorm:"not null;default:false"`
	CreatedAtMs int64 `gorm:"not null"`
	UpdatedAtMs int64 `gorm:"not null"`
}

func (medication *Medication) BeforeCreate(tx *gorm.DB) error {
	if medication.ID == uuid.Nil {
		medication.ID = uuid.New()
	}
	return nil
}
