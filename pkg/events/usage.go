package events

import (
	"sync"
	"time"
)

// UsageTracker enforces a daily cap on upstream LLM calls. The counter resets
// on the first call of a new day (server local time).
type UsageTracker struct {
	mu    sync.Mutex
	cap   int
	day   string
	count int
	now   func() time.Time
}

func NewUsageTracker(dailyCap int) *UsageTracker {
	return &UsageTracker{cap: dailyCap, now: time.Now}
}

// Allow records one call attempt and reports whether it is under the cap.
// Rejected attempts do not consume budget.
func (t *UsageTracker) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	if t.count >= t.cap {
		return false
	}
	t.count++
	return true
}

// CallsToday returns the number of calls admitted so far today.
func (t *UsageTracker) CallsToday() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.count
}

// Cap returns the configured daily limit.
func (t *UsageTracker) Cap() int {
	return t.cap
}

func (t *UsageTracker) rollover() {
	today := t.now().Format("2006-01-02")
	if t.day != today {
		t.day = today
		t.count = 0
	}
}
