package services

import (
	"context"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"go.uber.org/zap"
)

// TimelineService is the single entry point the outer layers use for dose
// timelines: enumerate a day, summarize a week, mark a dose taken, invalidate
// after a schedule edit. Nothing outside it reads persistence for timelines.
type TimelineService struct {
	months   *MonthCache
	weeks    *WeekSummaryCache
	recorder *IntakeRecorder
	location *time.Location
}

func NewTimelineService(months *MonthCache, intakes IntakeWriter, location *time.Location, log *zap.Logger) *TimelineService {
	if location == nil {
		location = time.UTC
	}
	service := &TimelineService{
		months:   months,
		location: location,
	}
	service.weeks = NewWeekSummaryCache(service, location)
	service.recorder = NewIntakeRecorder(intakes, months, service.weeks, log)
	return service
}

// DosesForDay returns the ordered dose timeline for one calendar day, filling
// the month cache first when needed. It enumerates the snapshot EnsureMonth
// hands back, so a concurrent refetch for another session cannot swap the
// data out from under it.
func (service *TimelineService) DosesForDay(ctx context.Context, session models.Session, day time.Time) ([]DoseEntry, error) {
	data, medications, err := service.months.EnsureMonth(ctx, session, day)
	if err != nil {
		return nil, err
	}
	return EnumerateDay(day, medications, data, service.location), nil
}

// ComputeWeek returns per-day (taken, total) counters for the week containing
// day, publishing each day as it becomes available.
func (service *TimelineService) ComputeWeek(ctx context.Context, session models.Session, day time.Time, publish func(DaySummary)) ([]DaySummary, error) {
	return service.weeks.ComputeWeek(ctx, session, WeekMonday(day, service.location), publish)
}

// MarkTaken flips a dose to taken, optimistically and idempotently, scoped to
// the session whose timeline produced the entry.
func (service *TimelineService) MarkTaken(session models.Session, entry *DoseEntry) {
	service.recorder.MarkTaken(session, entry)
}

// Invalidate drops both caches; called after any medication or schedule
// mutation, since a changed end date can reach into any month.
func (service *TimelineService) Invalidate() {
	service.months.Invalidate()
	service.weeks.Reset()
}

// WeekSummaries exposes the week cache for optimistic reads.
func (service *TimelineService) WeekSummaries() *WeekSummaryCache {
	return service.weeks
}

// WaitForWrites blocks until in-flight intake persists finish.
func (service *TimelineService) WaitForWrites() {
	service.recorder.Wait()
}
