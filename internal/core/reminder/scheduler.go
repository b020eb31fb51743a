// Package reminder repeats a "turn the timer back on" nudge while the timer
// is stopped.
package reminder

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler fires notify every interval while enabled and the timer is
// stopped. Each stop re-arms the interval from zero.
type Scheduler struct {
	mu           sync.Mutex
	clock        clockwork.Clock
	notify       func()
	enabled      bool
	interval     time.Duration
	timerRunning bool
	ticker       clockwork.Ticker
	stopCh       chan struct{}
	closed       bool
}

// New creates a disabled scheduler. notify runs on the scheduler goroutine.
func New(clock clockwork.Clock, notify func()) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, notify: notify}
}

// Configure updates the feature flag and interval. Disabling cancels any
// pending reminder; enabling or changing the interval while the timer is
// stopped re-arms it.
func (scheduler *Scheduler) Configure(enabled bool, interval time.Duration) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	changed := enabled != scheduler.enabled || interval != scheduler.interval
	scheduler.enabled = enabled
	scheduler.interval = interval

	if !enabled {
		scheduler.cancelLocked()
		return
	}
	if scheduler.timerRunning {
		return
	}
	if changed || scheduler.ticker == nil {
		scheduler.armLocked()
	}
}

// TimerStopped re-arms the reminder from zero.
func (scheduler *Scheduler) TimerStopped() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.timerRunning = false
	scheduler.cancelLocked()
	if scheduler.enabled {
		scheduler.armLocked()
	}
}

// TimerStarted cancels the reminder.
func (scheduler *Scheduler) TimerStarted() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.timerRunning = true
	scheduler.cancelLocked()
}

// Armed reports whether a reminder is scheduled.
func (scheduler *Scheduler) Armed() bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.ticker != nil
}

// Close cancels the reminder permanently.
func (scheduler *Scheduler) Close() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.closed = true
	scheduler.cancelLocked()
}

func (scheduler *Scheduler) armLocked() {
	scheduler.cancelLocked()
	if scheduler.closed || scheduler.interval <= 0 {
		return
	}
	ticker := scheduler.clock.NewTicker(scheduler.interval)
	stopCh := make(chan struct{})
	scheduler.ticker = ticker
	scheduler.stopCh = stopCh
	go scheduler.run(ticker, stopCh)
}

func (scheduler *Scheduler) cancelLocked() {
	if scheduler.ticker == nil {
		return
	}
	scheduler.ticker.Stop()
	close(scheduler.stopCh)
	scheduler.ticker = nil
	scheduler.stopCh = nil
}

func (scheduler *Scheduler) run(ticker clockwork.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			scheduler.fire(stopCh)
		}
	}
}

func (scheduler *Scheduler) fire(stopCh chan struct{}) {
	scheduler.mu.Lock()
	current := scheduler.stopCh == stopCh
	scheduler.mu.Unlock()
	if !current || scheduler.notify == nil {
		return
	}
	scheduler.notify()
}
