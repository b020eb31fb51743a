package refresh

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func direct(fn func()) { fn() }

func TestTriggerRuns(t *testing.T) {
	var calls atomic.Int32
	coalescer := newWithRunner(func() { calls.Add(1) }, direct)
	defer coalescer.Stop()

	coalescer.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
}

func TestBurstCollapses(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	coalescer := newWithRunner(func() {
		calls.Add(1)
		<-release
	}, direct)
	defer coalescer.Stop()

	coalescer.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	for i := 0; i < 100; i++ {
		coalescer.Trigger()
	}
	close(release)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	coalescer := newWithRunner(func() { calls.Add(1) }, direct)
	coalescer.Stop()
	coalescer.Stop()
	coalescer.Trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
