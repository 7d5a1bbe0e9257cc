package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"go.uber.org/zap"
)

// ReminderTrigger is the payload a platform notification needs for one
// upcoming dose. Delivery is someone else's job; this layer only derives the
// data.
type ReminderTrigger struct {
	MedicationName string
	Dosage         string
	TimeLocal      string
	TimestampMs    int64
}

type ReminderTimeline interface {
	DosesForDay(ctx context.Context, session models.Session, day time.Time) ([]DoseEntry, error)
}

type ReminderService struct {
	timeline ReminderTimeline
	session  models.Session
	location *time.Location
	interval time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	notified map[string]time.Time
}

func NewReminderService(timeline ReminderTimeline, session models.Session, location *time.Location, interval time.Duration, log *zap.Logger) *ReminderService {
	if location == nil {
		location = time.UTC
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderService{
		timeline: timeline,
		session:  session,
		location: location,
		interval: interval,
		log:      log,
		notified: make(map[string]time.Time),
	}
}

// TriggersForDay derives the reminder payloads for every scheduled, non-PRN
// dose of the given day.
func (service *ReminderService) TriggersForDay(ctx context.Context, session models.Session, day time.Time) ([]ReminderTrigger, error) {
	entries, err := service.timeline.DosesForDay(ctx, session, day)
	if err != nil {
		return nil, err
	}
	triggers := make([]ReminderTrigger, 0, len(entries))
	for _, entry := range entries {
		if entry.PRN {
			continue
		}
		triggers = append(triggers, ReminderTrigger{
			MedicationName: entry.MedicationName,
			Dosage:         entry.Dosage,
			TimeLocal:      entry.TimeLabel,
			TimestampMs:    entry.TimestampMs,
		})
	}
	return triggers, nil
}

// Start runs the reminder tick loop until ctx is cancelled. Each tick logs the
// doses coming due inside the next interval that are still unmarked; a
// notified key is remembered so one dose never fires twice in a day.
func (service *ReminderService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(service.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				service.tick(ctx, now)
			}
		}
	}()
}

func (service *ReminderService) tick(ctx context.Context, now time.Time) {
	entries, err := service.timeline.DosesForDay(ctx, service.session, now)
	if err != nil {
		service.log.Warn("reminder tick skipped", zap.Error(err))
		return
	}

	windowStart := now.UnixMilli()
	windowEnd := now.Add(service.interval).UnixMilli()
	for _, entry := range entries {
		if entry.PRN || entry.Taken {
			continue
		}
		if entry.TimestampMs < windowStart || entry.TimestampMs >= windowEnd {
			continue
		}
		key := fmt.Sprintf("%s|%s", DayKey(now, service.location), entry.ScheduleTimeID)
		service.mu.Lock()
		_, alreadyNotified := service.notified[key]
		if !alreadyNotified {
			service.notified[key] = now
		}
		service.mu.Unlock()
		if alreadyNotified {
			continue
		}
		service.log.Info("dose due",
			zap.String("medication", entry.MedicationName),
			zap.String("dosage", entry.Dosage),
			zap.String("time", entry.TimeLabel))
	}

	service.pruneNotified(now)
}

func (service *ReminderService) pruneNotified(now time.Time) {
	cutoff := now.AddDate(0, 0, -1)
	service.mu.Lock()
	defer service.mu.Unlock()
	for key, notifiedAt := range service.notified {
		if notifiedAt.Before(cutoff) {
			delete(service.notified, key)
		}
	}
}
