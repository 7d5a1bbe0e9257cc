package db

import "gorm.io/gorm"

type Repositories struct {
	Medications *MedicationRepository
	Schedules   *ScheduleRepository
	Intakes     *IntakeRepository
	Reminders   *ReminderRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Medications: NewMedicationRepository(database),
		Schedules:   NewScheduleRepository(database),
		Intakes:     NewIntakeRepository(database),
		Reminders:   NewReminderRepository(database),
	}
}
