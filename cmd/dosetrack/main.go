package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/alenarusso/dosetrack/internal/api"
	"github.com/alenarusso/dosetrack/internal/config"
	"github.com/alenarusso/dosetrack/internal/db"
	"github.com/alenarusso/dosetrack/internal/logger"
	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/alenarusso/dosetrack/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	log := logger.L()
	defer func() { _ = log.Sync() }()

	cfg := config.Load(log)

	location := mustLoadLocation(cfg.Timezone, log)
	time.Local = location

	database, err := db.OpenSQLite(cfg.DBPath, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	repositories := db.NewRepositories(database)

	defaultSession := models.Session{UserID: cfg.DefaultUserID, ProfileID: cfg.DefaultProfileID}

	monthCache := services.NewMonthCache(
		repositories.Medications,
		repositories.Schedules,
		repositories.Intakes,
		location,
		log,
	)
	timeline := services.NewTimelineService(monthCache, repositories.Intakes, location, log)
	medications := services.NewMedicationService(
		repositories.Medications,
		repositories.Schedules,
		repositories.Reminders,
		timeline,
	)
	reminders := services.NewReminderService(timeline, defaultSession, location, cfg.ReminderInterval, log)
	rebuilds := services.NewDebouncer(cfg.RebuildDebounce)

	handler := api.NewHandler(timeline, medications, reminders, rebuilds, defaultSession, location, log)

	app := fiber.New(fiber.Config{
		AppName:               "dosetrack",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	api.RegisterRoutes(app, handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	reminders.Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		rebuilds.Cancel()
		timeline.WaitForWrites()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("dosetrack listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func mustLoadLocation(name string, log *zap.Logger) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("invalid TZ, falling back to UTC", zap.String("tz", name))
		return time.UTC
	}
	return location
}
