package api

import (
	"errors"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/alenarusso/dosetrack/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	timeline       *services.TimelineService
	medications    *services.MedicationService
	reminders      *services.ReminderService
	rebuilds       *services.Debouncer
	defaultSession models.Session
	location       *time.Location
	log            *zap.Logger
}

func NewHandler(
	timeline *services.TimelineService,
	medications *services.MedicationService,
	reminders *services.ReminderService,
	rebuilds *services.Debouncer,
	defaultSession models.Session,
	location *time.Location,
	log *zap.Logger,
) *Handler {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		timeline:       timeline,
		medications:    medications,
		reminders:      reminders,
		rebuilds:       rebuilds,
		defaultSession: defaultSession,
		location:       location,
		log:            log,
	}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// session resolves the acting user/profile from request headers, falling back
// to the configured standalone identity.
func (handler *Handler) session(c *fiber.Ctx) models.Session {
	session := models.Session{
		UserID:    c.Get("X-User-ID"),
		ProfileID: c.Get("X-Profile-ID"),
	}
	if session.UserID == "" {
		session.UserID = handler.defaultSession.UserID
	}
	if session.ProfileID == "" {
		session.ProfileID = handler.defaultSession.ProfileID
	}
	return session
}

func (handler *Handler) parseDateParam(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Params(name)
	day, err := time.ParseInLocation("2006-01-02", raw, handler.location)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

func (handler *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMedicationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidMedicationInput), errors.Is(err, services.ErrInvalidScheduleInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		handler.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
