package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrMonthFetchFailed = errors.New("month fetch failed")

type MonthMedicationReader interface {
	ListActive(session models.Session) ([]models.Medication, error)
}

type MonthScheduleReader interface {
	ListForMedication(medicationID uuid.UUID) ([]models.Schedule, error)
	ListTimesForSchedule(scheduleID uuid.UUID) ([]models.ScheduleTime, error)
}

type MonthIntakeReader interface {
	ListForMedicationRange(medicationID uuid.UUID, fromMs int64, toMs int64) ([]models.IntakeLog, error)
}

type monthFetch struct {
	done   chan struct{}
	data   MonthData
	loaded []models.Medication
	stale  bool
	err    error
}

// MonthCache memoizes, per (session, year, month), everything the day
// enumerator needs: schedules, schedule times and month-scoped intake logs
// for the session's active medications. Queries stay O(medications) per month
// instead of per day visited. The key carries the session, so one user's warm
// month is never a hit for another. All mutation is mutex-guarded; concurrent
// EnsureMonth calls for the same key share one fetch.
type MonthCache struct {
	medications MonthMedicationReader
	schedules   MonthScheduleReader
	intakes     MonthIntakeReader
	location    *time.Location
	log         *zap.Logger

	mu         sync.Mutex
	key        string
	wantKey    string
	generation uint64
	data       MonthData
	loaded     []models.Medication
	inflight   map[string]*monthFetch
}

func NewMonthCache(medications MonthMedicationReader, schedules MonthScheduleReader, intakes MonthIntakeReader, location *time.Location, log *zap.Logger) *MonthCache {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MonthCache{
		medications: medications,
		schedules:   schedules,
		intakes:     intakes,
		location:    location,
		log:         log,
		data:        NewMonthData(),
		inflight:    make(map[string]*monthFetch),
	}
}

func monthCacheKey(session models.Session, day time.Time, location *time.Location) string {
	return session.Key() + "|" + MonthKey(day, location)
}

// EnsureMonth returns the month data for the session and the month containing
// day. A hit returns the cached snapshot; a miss fetches from the gateway,
// with concurrent callers for the same key awaiting the same fetch. A fetch
// that loses to an invalidation is discarded and retried, so the caller never
// proceeds on data that predates a mutation. A fetch superseded by a newer
// navigation commits nothing but its snapshot is still returned: it is valid
// for the month it was asked for. On failure the cache is left cleared with
// no key, so the next call refetches.
func (cache *MonthCache) EnsureMonth(ctx context.Context, session models.Session, day time.Time) (MonthData, []models.Medication, error) {
	for {
		data, loaded, retry, err := cache.ensureMonthOnce(ctx, session, day)
		if err != nil {
			return MonthData{}, nil, err
		}
		if !retry {
			return data, loaded, nil
		}
		if err := ctx.Err(); err != nil {
			return MonthData{}, nil, err
		}
	}
}

func (cache *MonthCache) ensureMonthOnce(ctx context.Context, session models.Session, day time.Time) (MonthData, []models.Medication, bool, error) {
	key := monthCacheKey(session, day, cache.location)

	cache.mu.Lock()
	if cache.key == key {
		data, loaded := cache.data, cache.loaded
		cache.mu.Unlock()
		return data, loaded, false, nil
	}
	cache.wantKey = key
	if fetch, running := cache.inflight[key]; running {
		cache.mu.Unlock()
		select {
		case <-fetch.done:
			if fetch.err != nil {
				return MonthData{}, nil, false, fetch.err
			}
			if fetch.stale {
				return MonthData{}, nil, true, nil
			}
			return fetch.data, fetch.loaded, false, nil
		case <-ctx.Done():
			return MonthData{}, nil, false, ctx.Err()
		}
	}
	fetch := &monthFetch{done: make(chan struct{})}
	cache.inflight[key] = fetch
	generation := cache.generation
	cache.mu.Unlock()

	data, loaded, err := cache.fetchMonth(session, day)

	cache.mu.Lock()
	delete(cache.inflight, key)
	switch {
	case err != nil:
		cache.log.Error("month fetch failed", zap.String("key", key), zap.Error(err))
		if cache.generation == generation && cache.wantKey == key {
			cache.key = ""
			cache.data = NewMonthData()
			cache.loaded = nil
		}
		fetch.err = ErrMonthFetchFailed
	case cache.generation != generation:
		// Invalidated mid-fetch: the result may predate the mutation.
		fetch.stale = true
	default:
		fetch.data = data
		fetch.loaded = loaded
		if cache.wantKey == key {
			cache.key = key
			cache.data = data
			cache.loaded = loaded
		}
	}
	cache.mu.Unlock()

	close(fetch.done)
	if fetch.err != nil {
		return MonthData{}, nil, false, fetch.err
	}
	return fetch.data, fetch.loaded, fetch.stale, nil
}

// Invalidate forces the next EnsureMonth to refetch, whatever key it asks
// for. Any fetch already in flight will discard its result and retry.
func (cache *MonthCache) Invalidate() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.generation++
	cache.key = ""
	cache.data = NewMonthData()
	cache.loaded = nil
}

// Snapshot returns the cached month data and the medication list it was
// fetched for. The maps are shared, not copied; callers treat them as
// read-only and route mutations through AppendLog.
func (cache *MonthCache) Snapshot() (MonthData, []models.Medication) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.data, cache.loaded
}

// AppendLog inserts a synthetic intake log into the cached month so a
// same-session re-enumeration sees it without a refetch. The append only
// lands when the cache currently holds the log's (session, month); otherwise
// the next refetch picks the persisted row up instead.
func (cache *MonthCache) AppendLog(session models.Session, medicationID uuid.UUID, intakeLog models.IntakeLog) {
	key := monthCacheKey(session, time.UnixMilli(intakeLog.TakenAtMs), cache.location)
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.key != key {
		return
	}
	cache.data.LogsByMedication[medicationID] = append(cache.data.LogsByMedication[medicationID], intakeLog)
}

func (cache *MonthCache) fetchMonth(session models.Session, day time.Time) (MonthData, []models.Medication, error) {
	monthStart, monthEnd := MonthRange(day, cache.location)

	medications, err := cache.medications.ListActive(session)
	if err != nil {
		return MonthData{}, nil, err
	}

	data := NewMonthData()
	for _, medication := range medications {
		schedules, err := cache.schedules.ListForMedication(medication.ID)
		if err != nil {
			return MonthData{}, nil, err
		}
		data.SchedulesByMedication[medication.ID] = schedules
		for _, schedule := range schedules {
			times, err := cache.schedules.ListTimesForSchedule(schedule.ID)
			if err != nil {
				return MonthData{}, nil, err
			}
			data.TimesBySchedule[schedule.ID] = times
		}

		logs, err := cache.intakes.ListForMedicationRange(medication.ID, monthStart.UnixMilli(), monthEnd.UnixMilli())
		if err != nil {
			return MonthData{}, nil, err
		}
		data.LogsByMedication[medication.ID] = logs
	}

	cache.log.Debug("month fetched",
		zap.String("month", MonthKey(day, cache.location)),
		zap.Int("medications", len(medications)))
	return data, medications, nil
}
