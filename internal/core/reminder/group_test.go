package reminder

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holder struct {
	handle *Handle
	fired  atomic.Int32
}

func join(t *testing.T, group *Group, key string) *holder {
	t.Helper()
	h := &holder{}
	h.handle = group.Join(func() { h.fired.Add(1) })
	t.Cleanup(h.handle.Close)
	h.handle.Bind(key)
	h.handle.Configure(true, time.Minute)
	return h
}

func total(holders ...*holder) int {
	sum := 0
	for _, h := range holders {
		sum += int(h.fired.Load())
	}
	return sum
}

func TestGroupSharesOneReminderPerKey(t *testing.T) {
	clock := clockwork.NewFakeClock()
	group := NewGroup(clock)
	first := join(t, group, "scarf/Unnamed")
	second := join(t, group, "scarf/Unnamed")

	for want := 1; want <= 3; want++ {
		clock.Advance(time.Minute)
		require.Eventually(t, func() bool { return total(first, second) == want }, 2*time.Second, 5*time.Millisecond)
	}
	time.Sleep(quiet)
	assert.Equal(t, 3, total(first, second))
	assert.Equal(t, int32(3), first.fired.Load())
}

func TestGroupRunningHolderSuppressesReminder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	group := NewGroup(clock)
	first := join(t, group, "scarf/Unnamed")
	second := join(t, group, "scarf/Unnamed")

	second.handle.TimerStarted()
	assert.False(t, first.handle.Armed())
	clock.Advance(3 * time.Minute)
	time.Sleep(quiet)
	assert.Zero(t, total(first, second))

	second.handle.TimerStopped()
	require.True(t, first.handle.Armed())
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return total(first, second) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestGroupHandOverAfterClose(t *testing.T) {
	clock := clockwork.NewFakeClock()
	group := NewGroup(clock)
	first := join(t, group, "scarf/Unnamed")
	second := join(t, group, "scarf/Unnamed")

	first.handle.Close()
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return second.fired.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, first.fired.Load())

	second.handle.Close()
	group.mu.Lock()
	defer group.mu.Unlock()
	assert.Empty(t, group.entries)
}

func TestGroupKeysAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	group := NewGroup(clock)
	scarf := join(t, group, "scarf/Unnamed")
	hat := join(t, group, "hat/Unnamed")

	hat.handle.TimerStarted()
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return scarf.fired.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(quiet)
	assert.Zero(t, hat.fired.Load())
}

func TestGroupRebindMovesHolder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	group := NewGroup(clock)
	first := join(t, group, "scarf/Unnamed")
	second := join(t, group, "scarf/Unnamed")

	second.handle.Bind("scarf/Sleeve")
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return total(first, second) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), first.fired.Load())
	assert.Equal(t, int32(1), second.fired.Load())

	second.handle.Bind("")
	assert.False(t, second.handle.Armed())
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return first.fired.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(quiet)
	assert.Equal(t, int32(1), second.fired.Load())
}
