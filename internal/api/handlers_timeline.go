package api

import (
	"context"
	"time"

	"github.com/alenarusso/dosetrack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type doseEntryView struct {
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	ScheduleID     string `json:"schedule_id"`
	ScheduleTimeID string `json:"schedule_time_id"`
	TimeLabel      string `json:"time_label"`
	TimestampMs    int64  `json:"timestamp_ms"`
	Dosage         string `json:"dosage"`
	PRN            bool   `json:"prn"`
	Taken          bool   `json:"taken"`
}

type daySummaryView struct {
	Date  string `json:"date"`
	Taken int    `json:"taken"`
	Total int    `json:"total"`
}

func (handler *Handler) GetDayTimeline(c *fiber.Ctx) error {
	day, err := handler.parseDateParam(c, "date")
	if err != nil {
		return badRequest(c, "invalid date, want YYYY-MM-DD")
	}

	entries, err := handler.timeline.DosesForDay(c.Context(), handler.session(c), day)
	if err != nil {
		return handler.serviceError(c, err)
	}

	views := make([]doseEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, newDoseEntryView(entry))
	}
	return c.JSON(views)
}

func (handler *Handler) GetWeekSummary(c *fiber.Ctx) error {
	day, err := handler.parseDateParam(c, "monday")
	if err != nil {
		return badRequest(c, "invalid date, want YYYY-MM-DD")
	}

	summaries, err := handler.timeline.ComputeWeek(c.Context(), handler.session(c), day, nil)
	if err != nil {
		return handler.serviceError(c, err)
	}

	views := make([]daySummaryView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, daySummaryView{
			Date:  summary.Date.Format("2006-01-02"),
			Taken: summary.Taken,
			Total: summary.Total,
		})
	}
	return c.JSON(views)
}

type markIntakeRequest struct {
	Date           string `json:"date"`
	ScheduleTimeID string `json:"schedule_time_id"`
}

// MarkIntake marks the dose of the given schedule time on the given day as
// taken. Re-marking a taken dose is a no-op and still returns the entry.
func (handler *Handler) MarkIntake(c *fiber.Ctx) error {
	request := markIntakeRequest{}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid body")
	}
	day, err := time.ParseInLocation("2006-01-02", request.Date, handler.location)
	if err != nil {
		return badRequest(c, "invalid date, want YYYY-MM-DD")
	}
	scheduleTimeID, err := uuid.Parse(request.ScheduleTimeID)
	if err != nil {
		return badRequest(c, "invalid schedule_time_id")
	}

	session := handler.session(c)
	entries, err := handler.timeline.DosesForDay(c.Context(), session, day)
	if err != nil {
		return handler.serviceError(c, err)
	}
	for index := range entries {
		if entries[index].ScheduleTimeID != scheduleTimeID {
			continue
		}
		handler.timeline.MarkTaken(session, &entries[index])
		return c.JSON(newDoseEntryView(entries[index]))
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no dose for that schedule time on that day"})
}

// RequestRebuild coalesces rapid navigation: the rebuild for a swiped-past day
// is cancelled by the next request, and only the settled day warms the caches.
func (handler *Handler) RequestRebuild(c *fiber.Ctx) error {
	day, err := handler.parseDateParam(c, "date")
	if err != nil {
		return badRequest(c, "invalid date, want YYYY-MM-DD")
	}
	session := handler.session(c)
	// The fiber context dies with the request; the delayed rebuild runs on
	// its own context.
	handler.rebuilds.Schedule(func() {
		if _, err := handler.timeline.DosesForDay(context.Background(), session, day); err != nil {
			handler.log.Warn("debounced rebuild failed", zap.Error(err))
		}
	})
	return c.SendStatus(fiber.StatusAccepted)
}

func newDoseEntryView(entry services.DoseEntry) doseEntryView {
	return doseEntryView{
		MedicationID:   entry.MedicationID.String(),
		MedicationName: entry.MedicationName,
		ScheduleID:     entry.ScheduleID.String(),
		ScheduleTimeID: entry.ScheduleTimeID.String(),
		TimeLabel:      entry.TimeLabel,
		TimestampMs:    entry.TimestampMs,
		Dosage:         entry.Dosage,
		PRN:            entry.PRN,
		Taken:          entry.Taken,
	}
}
