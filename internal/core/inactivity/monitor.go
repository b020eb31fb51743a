// Package inactivity detects timer runtime that passes without any counter
// interaction.
package inactivity

import (
	"sync"
	"time"
)

// Monitor compares a section's elapsed time against the elapsed time recorded
// at the last counter interaction. Because elapsed time only grows while the
// timer runs, the gap measures timer runtime without interaction, not wall time.
type Monitor struct {
	mu        sync.Mutex
	enabled   bool
	threshold time.Duration
	baseline  time.Duration
	attached  bool
}

// New creates a disabled, detached monitor.
func New() *Monitor {
	return &Monitor{}
}

// Configure enables or disables the monitor and sets the threshold.
func (monitor *Monitor) Configure(enabled bool, threshold time.Duration) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.enabled = enabled
	monitor.threshold = threshold
}

// Attach binds the monitor to a section whose elapsed time is current.
func (monitor *Monitor) Attach(current time.Duration) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.attached = true
	monitor.baseline = current
}

// Detach makes the monitor inert until the next Attach.
func (monitor *Monitor) Detach() {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.attached = false
	monitor.baseline = 0
}

// Touch records a counter interaction at the given section elapsed time.
func (monitor *Monitor) Touch(current time.Duration) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.baseline = current
}

// Baseline returns the elapsed time of the last interaction.
func (monitor *Monitor) Baseline() time.Duration {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	return monitor.baseline
}

// Observe reports whether the running timer should be paused now.
func (monitor *Monitor) Observe(current time.Duration, running bool) bool {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	if !monitor.enabled || !monitor.attached || !running || monitor.threshold <= 0 {
		return false
	}
	return current-monitor.baseline > monitor.threshold
}
