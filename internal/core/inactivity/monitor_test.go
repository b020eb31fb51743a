package inactivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveFiresPastThreshold(t *testing.T) {
	monitor := New()
	monitor.Configure(true, time.Minute)
	monitor.Attach(10 * time.Second)

	assert.False(t, monitor.Observe(70*time.Second, true), "exactly at threshold")
	assert.True(t, monitor.Observe(70*time.Second+time.Millisecond, true))
}

func TestTouchMovesBaseline(t *testing.T) {
	monitor := New()
	monitor.Configure(true, time.Minute)
	monitor.Attach(0)

	monitor.Touch(50 * time.Second)
	assert.Equal(t, 50*time.Second, monitor.Baseline())
	assert.False(t, monitor.Observe(100*time.Second, true))
	assert.True(t, monitor.Observe(111*time.Second, true))
}

func TestObserveInertCases(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Monitor)
		running bool
	}{
		{"disabled", func(m *Monitor) { m.Configure(false, time.Minute); m.Attach(0) }, true},
		{"detached", func(m *Monitor) { m.Configure(true, time.Minute) }, true},
		{"detached after attach", func(m *Monitor) { m.Configure(true, time.Minute); m.Attach(0); m.Detach() }, true},
		{"timer stopped", func(m *Monitor) { m.Configure(true, time.Minute); m.Attach(0) }, false},
		{"zero threshold", func(m *Monitor) { m.Configure(true, 0); m.Attach(0) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := New()
			tt.setup(monitor)
			assert.False(t, monitor.Observe(time.Hour, tt.running))
		})
	}
}
