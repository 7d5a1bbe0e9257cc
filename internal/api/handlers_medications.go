package api

import (
	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type medicationView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Notes       string `json:"notes"`
	CreatedAtMs int64  `json:"created_at_ms"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

type medicationRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type scheduleTimeRequest struct {
	TimeLocal    string   `json:"time_local"`
	Dosage       string   `json:"dosage"`
	DoseAmount   *float64 `json:"dose_amount"`
	DoseUnit     string   `json:"dose_unit"`
	Instructions *string  `json:"instructions"`
	PRN          bool     `json:"prn"`
	SortOrder    int      `json:"sort_order"`
}

type scheduleRequest struct {
	Recurrence  string                `json:"recurrence"`
	IsForever   bool                  `json:"is_forever"`
	StartDateMs int64                 `json:"start_date_ms"`
	EndDateMs   *int64                `json:"end_date_ms"`
	DaysOfWeek  string                `json:"days_of_week"`
	Timezone    string                `json:"timezone"`
	Times       []scheduleTimeRequest `json:"times"`
}

func (handler *Handler) ListMedications(c *fiber.Ctx) error {
	medications, err := handler.medications.ListMedications(handler.session(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	views := make([]medicationView, 0, len(medications))
	for _, medication := range medications {
		views = append(views, newMedicationView(medication))
	}
	return c.JSON(views)
}

func (handler *Handler) CreateMedication(c *fiber.Ctx) error {
	request := medicationRequest{}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid body")
	}
	medication, err := handler.medications.CreateMedication(handler.session(c), request.Name, request.Notes)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newMedicationView(medication))
}

func (handler *Handler) UpdateMedication(c *fiber.Ctx) error {
	medicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid medication id")
	}
	request := medicationRequest{}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid body")
	}
	medication, err := handler.medications.UpdateMedication(handler.session(c), medicationID, request.Name, request.Notes)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newMedicationView(medication))
}

func (handler *Handler) DeleteMedication(c *fiber.Ctx) error {
	medicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid medication id")
	}
	if c.Query("archive") == "true" {
		if err := handler.medications.ArchiveMedication(handler.session(c), medicationID); err != nil {
			return handler.serviceError(c, err)
		}
	} else if err := handler.medications.DeleteMedication(handler.session(c), medicationID); err != nil {
		return handler.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ReplaceSchedule(c *fiber.Ctx) error {
	medicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid medication id")
	}
	request := scheduleRequest{}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid body")
	}

	schedule := models.Schedule{
		Recurrence:  request.Recurrence,
		IsForever:   request.IsForever,
		StartDateMs: request.StartDateMs,
		EndDateMs:   request.EndDateMs,
		DaysOfWeek:  request.DaysOfWeek,
		Timezone:    request.Timezone,
	}
	times := make([]models.ScheduleTime, 0, len(request.Times))
	for _, timeRequest := range request.Times {
		times = append(times, models.ScheduleTime{
			ID:           uuid.New(),
			TimeLocal:    timeRequest.TimeLocal,
			Dosage:       timeRequest.Dosage,
			DoseAmount:   timeRequest.DoseAmount,
			DoseUnit:     timeRequest.DoseUnit,
			Instructions: timeRequest.Instructions,
			PRN:          timeRequest.PRN,
			SortOrder:    timeRequest.SortOrder,
		})
	}

	saved, err := handler.medications.ReplaceSchedule(handler.session(c), medicationID, schedule, times)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"schedule_id": saved.ID.String()})
}

func (handler *Handler) GetDayReminders(c *fiber.Ctx) error {
	day, err := handler.parseDateParam(c, "date")
	if err != nil {
		return badRequest(c, "invalid date, want YYYY-MM-DD")
	}
	triggers, err := handler.reminders.TriggersForDay(c.Context(), handler.session(c), day)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(triggers)
}

func newMedicationView(medication models.Medication) medicationView {
	return medicationView{
		ID:          medication.ID.String(),
		Name:        medication.Name,
		Notes:       medication.Notes,
		CreatedAtMs: medication.CreatedAtMs,
		UpdatedAtMs: medication.UpdatedAtMs,
	}
}
