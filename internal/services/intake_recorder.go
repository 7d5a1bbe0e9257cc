package services

import (
	"sync"
	"time"

	"github.com/alenarusso/dosetrack/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	intakePersistAttempts = 3
	intakePersistBackoff  = 250 * time.Millisecond
)

type IntakeWriter interface {
	Record(intakeLog *models.IntakeLog) error
}

// IntakeRecorder owns the "dose becomes taken" transition: flip the entry,
// bump the week counters, patch the cached month, then persist in the
// background. Persistence failures are retried with backoff and logged; the
// optimistic state stands either way and the next month refetch reconciles it
// against what actually landed.
type IntakeRecorder struct {
	intakes IntakeWriter
	months  *MonthCache
	weeks   *WeekSummaryCache
	log     *zap.Logger

	backoff time.Duration
	pending sync.WaitGroup
}

func NewIntakeRecorder(intakes IntakeWriter, months *MonthCache, weeks *WeekSummaryCache, log *zap.Logger) *IntakeRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntakeRecorder{
		intakes: intakes,
		months:  months,
		weeks:   weeks,
		log:     log,
		backoff: intakePersistBackoff,
	}
}

// MarkTaken records the dose as taken for the session that enumerated it.
// Marking an already-taken entry is a no-op, not an error. The in-memory
// flip, the week-counter bump and the synthetic cache log all happen before
// this returns; the durable write runs asynchronously.
func (recorder *IntakeRecorder) MarkTaken(session models.Session, entry *DoseEntry) {
	if entry == nil || entry.Taken {
		return
	}
	entry.Taken = true

	takenAt := time.UnixMilli(entry.TimestampMs)
	recorder.weeks.RecordOptimisticTaken(session, takenAt)

	intakeLog := models.IntakeLog{
		ID:             uuid.New(),
		ScheduleTimeID: entry.ScheduleTimeID,
		TakenAtMs:      entry.TimestampMs,
		Status:         models.IntakeStatusTaken,
	}
	recorder.months.AppendLog(session, entry.MedicationID, intakeLog)

	recorder.pending.Add(1)
	go func() {
		defer recorder.pending.Done()
		recorder.persist(intakeLog)
	}()
}

// Wait blocks until every background persist has finished. Used on shutdown
// and in tests.
func (recorder *IntakeRecorder) Wait() {
	recorder.pending.Wait()
}

// persist retries the append a bounded number of times. The log id is fixed
// across attempts, so a replay of an insert that actually landed is absorbed
// by the primary key instead of duplicating the row.
func (recorder *IntakeRecorder) persist(intakeLog models.IntakeLog) {
	delay := recorder.backoff
	for attempt := 1; attempt <= intakePersistAttempts; attempt++ {
		logCopy := intakeLog
		err := recorder.intakes.Record(&logCopy)
		if err == nil {
			return
		}
		recorder.log.Warn("intake persist failed",
			zap.String("intake_log_id", intakeLog.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < intakePersistAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	recorder.log.Error("intake persist abandoned; will reconcile on next month refetch",
		zap.String("intake_log_id", intakeLog.ID.String()),
		zap.String("schedule_time_id", intakeLog.ScheduleTimeID.String()))
}
