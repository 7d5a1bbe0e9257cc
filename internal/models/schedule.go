package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const RecurrenceDaily = "daily"

// Schedule is the persisted recurrence rule for one medication. EndDateMs is
// nil exactly when IsForever is true; DaysOfWeek is a comma-separated list of
// uppercase 3-letter codes ("MON,WED,FRI"), empty meaning every day.
type Schedule struct {
	ID              uuid.UUID `gorm:"primaryKey"`
	MedicationID    uuid.UUID `gorm:"index;not null"`
	Recurrence      string    `gorm:"not null;default:daily"`
	FrequencyPerDay int       `gorm:"not null;default:0"`
	IsForever       bool      `gorm:"not null;default:true"`
	StartDateMs     int64     `gorm:"not null"`
	EndDateMs       *int64
	DaysOfWeek      string
	Timezone        string
}

func (Schedule) TableName() string { return "medication_schedules" }

func (schedule *Schedule) BeforeCreate(tx *gorm.DB) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	return nil
}

// DayCodes splits the DaysOfWeek column into trimmed uppercase codes.
func (schedule Schedule) DayCodes() []string {
	if strings.TrimSpace(schedule.DaysOfWeek) == "" {
		return nil
	}
	rawParts := strings.Split(schedule.DaysOfWeek, ",")
	codes := make([]string, 0, len(rawParts))
	for _, rawPart := range rawParts {
		code := strings.ToUpper(strings.TrimSpace(rawPart))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}
