package app

import (
	"sync"
	"time"
)

// DefaultTickInterval matches the 250ms display cadence of the browser app.
const DefaultTickInterval = 250 * time.Millisecond

// TimerDriver watches timed sessions and forces submission at the deadline.
// Expiry is always computed from the wall-clock deadline, never from tick
// counts, so a suspended process still expires at the right moment.
type TimerDriver struct {
	interval time.Duration
	now      func() time.Time
}

func NewTimerDriver(interval time.Duration) *TimerDriver {
	return NewTimerDriverWithClock(interval, time.Now)
}

// NewTimerDriverWithClock is test-only for driving expiry without real waits.
func NewTimerDriverWithClock(interval time.Duration, now func() time.Time) *TimerDriver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TimerDriver{interval: interval, now: now}
}

// Now returns the driver's current time from its injected clock, so
// callers displaying remaining time agree with the expiry decision.
func (d *TimerDriver) Now() time.Time {
	return d.now()
}

// Start begins ticking for the session. onTick, if non-nil, receives the
// remaining time each tick for display. When the deadline passes while the
// session is still Active, expire is invoked once and ticking stops; the
// driver also stops as soon as the session is graded by other means.
//
// The returned stop function cancels the driver and blocks until the
// ticking goroutine has exited, so after it returns neither callback will
// fire again. It is idempotent and must be called when the caller abandons
// the session.
func (d *TimerDriver) Start(s *QuizSession, onTick func(remaining time.Duration), expire func()) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }
	stop = func() {
		cancel()
		<-finished
	}

	if _, timed := s.Remaining(d.now()); !timed {
		// Untimed sessions never expire; nothing to watch.
		cancel()
		close(finished)
		return stop
	}

	go func() {
		defer close(finished)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if s.Submitted() {
					cancel()
					return
				}
				remaining, _ := s.Remaining(d.now())
				if onTick != nil {
					onTick(remaining)
				}
				if remaining <= 0 {
					cancel()
					expire()
					return
				}
			}
		}
	}()
	return stop
}
