package walk

import (
	"sync/atomic"
	"time"
)

// Throttle rate-limits progress work during a long traversal. A background
// goroutine arms an atomic flag at a fixed interval; the consumer checks
// and clears the flag between entries. The limiting is approximate: ticks
// and checks are not ordered against each other, so "at most once per
// interval" is likely, not guaranteed.
type Throttle struct {
	due  atomic.Bool
	stop chan struct{}
}

// NewThrottle starts the timer. The first due signal arrives one interval
// after the initial delay (which may be zero) has passed.
func NewThrottle(interval, initial time.Duration) *Throttle {
	t := &Throttle{stop: make(chan struct{})}
	go t.run(interval, initial)
	return t
}

func (t *Throttle) run(interval, initial time.Duration) {
	if initial > 0 {
		select {
		case <-time.After(initial):
		case <-t.stop:
			return
		}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		// Check stop first so a close always wins over a pending tick.
		select {
		case <-t.stop:
			return
		default:
		}
		select {
		case <-ticker.C:
			t.due.Store(true)
		case <-t.stop:
			return
		}
	}
}

// Due reports whether a throttled action may run now, clearing the flag.
func (t *Throttle) Due() bool {
	return t.due.Swap(false)
}

// RunIfDue runs f only when the interval has elapsed since the last run.
func (t *Throttle) RunIfDue(f func()) {
	if t.Due() {
		f()
	}
}

// Stop terminates the background timer. Call it exactly once.
func (t *Throttle) Stop() {
	close(t.stop)
}
