package services

import (
	"context"
	"sync"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
)

// DaySummary is the per-day compliance counter pair behind the 7-day strip.
// PRN doses are excluded from both counters: the strip reflects scheduled
// doses only.
type DaySummary struct {
	Date  time.Time
	Taken int
	Total int
}

type WeekDayEnumerator interface {
	DosesForDay(ctx context.Context, session models.Session, day time.Time) ([]DoseEntry, error)
}

// WeekSummaryCache memoizes (taken, total) per (session, day) key, filling
// lazily as weeks are viewed. The key carries the session so one user's
// counters are never served to another. Dose-taken events bump a cached day
// optimistically before the write lands.
type WeekSummaryCache struct {
	timeline WeekDayEnumerator
	location *time.Location

	mu     sync.Mutex
	counts map[string]DaySummary
}

func NewWeekSummaryCache(timeline WeekDayEnumerator, location *time.Location) *WeekSummaryCache {
	if location == nil {
		location = time.UTC
	}
	return &WeekSummaryCache{
		timeline: timeline,
		location: location,
		counts:   make(map[string]DaySummary),
	}
}

func (cache *WeekSummaryCache) dayKey(session models.Session, day time.Time) string {
	return session.Key() + "|" + DayKey(day, cache.location)
}

// ComputeWeek returns summaries for the 7 days starting at weekMonday,
// reusing cached days and enumerating the rest. Each computed day is cached
// and published before the next day starts, so a strip can render
// progressively; publish may be nil.
func (cache *WeekSummaryCache) ComputeWeek(ctx context.Context, session models.Session, weekMonday time.Time, publish func(DaySummary)) ([]DaySummary, error) {
	monday := WeekMonday(weekMonday, cache.location)

	summaries := make([]DaySummary, 0, 7)
	for offset := 0; offset < 7; offset++ {
		day := monday.AddDate(0, 0, offset)
		key := cache.dayKey(session, day)

		cache.mu.Lock()
		summary, cached := cache.counts[key]
		cache.mu.Unlock()

		if !cached {
			entries, err := cache.timeline.DosesForDay(ctx, session, day)
			if err != nil {
				return summaries, err
			}
			summary = summarizeDay(day, entries)
			cache.mu.Lock()
			cache.counts[key] = summary
			cache.mu.Unlock()
		}

		if publish != nil {
			publish(summary)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// RecordOptimisticTaken bumps the cached taken count for the session's day,
// ahead of persistence. The caller only invokes it for entries known
// not-taken, and the count is clamped so taken <= total holds even against a
// racing recompute.
func (cache *WeekSummaryCache) RecordOptimisticTaken(session models.Session, day time.Time) {
	key := cache.dayKey(session, day)
	cache.mu.Lock()
	defer cache.mu.Unlock()
	summary, cached := cache.counts[key]
	if !cached {
		return
	}
	if summary.Taken < summary.Total {
		summary.Taken++
		cache.counts[key] = summary
	}
}

// Summary returns the cached counters for a session's day, if present.
func (cache *WeekSummaryCache) Summary(session models.Session, day time.Time) (DaySummary, bool) {
	key := cache.dayKey(session, day)
	cache.mu.Lock()
	defer cache.mu.Unlock()
	summary, cached := cache.counts[key]
	return summary, cached
}

// Reset drops every cached day; used when schedules or medications change.
func (cache *WeekSummaryCache) Reset() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.counts = make(map[string]DaySummary)
}

// InvalidateDay drops one day so the next week computation rebuilds it.
func (cache *WeekSummaryCache) InvalidateDay(session models.Session, day time.Time) {
	key := cache.dayKey(session, day)
	cache.mu.Lock()
	defer cache.mu.Unlock()
	delete(cache.counts, key)
}

func summarizeDay(day time.Time, entries []DoseEntry) DaySummary {
	summary := DaySummary{Date: day}
	for _, entry := range entries {
		if entry.PRN {
			continue
		}
		summary.Total++
		if entry.Taken {
			summary.Taken++
		}
	}
	return summary
}
