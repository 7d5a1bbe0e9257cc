package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	timeline := api.Group("/timeline")
	timeline.Get("/day/:date", handler.GetDayTimeline)
	timeline.Get("/week/:monday", handler.GetWeekSummary)
	timeline.Post("/rebuild/:date", handler.RequestRebuild)

	api.Post("/intakes", handler.MarkIntake)

	medications := api.Group("/medications")
	medications.Get("/", handler.ListMedications)
	medications.Post("/", handler.CreateMedication)
	medications.Put("/:id", handler.UpdateMedication)
	medications.Delete("/:id", handler.DeleteMedication)
	medications.Put("/:id/schedule", handler.ReplaceSchedule)

	api.Get("/reminders/day/:date", handler.GetDayReminders)
}
