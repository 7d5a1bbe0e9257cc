package services

import (
	"sync"
	"time"
)

const DefaultRebuildDebounce = 150 * time.Millisecond

// Debouncer coalesces bursts of rebuild requests (fast day swiping) so only
// the settled request runs. Superseded requests are cancelled, never queued,
// and a stale timer firing during reschedule is discarded by the generation
// token.
type Debouncer struct {
	delay time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultRebuildDebounce
	}
	return &Debouncer{delay: delay}
}

// Schedule arranges for task to run after the debounce delay, cancelling any
// previously scheduled task.
func (debouncer *Debouncer) Schedule(task func()) {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	debouncer.generation++
	generation := debouncer.generation
	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}
	debouncer.timer = time.AfterFunc(debouncer.delay, func() {
		debouncer.mu.Lock()
		stale := generation != debouncer.generation
		debouncer.mu.Unlock()
		if stale {
			return
		}
		task()
	})
}

// Cancel drops any pending task.
func (debouncer *Debouncer) Cancel() {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()
	debouncer.generation++
	if debouncer.timer != nil {
		debouncer.timer.Stop()
		debouncer.timer = nil
	}
}
