package timekeeper

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeeper(t *testing.T) (*TimeKeeper, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	keeper := New(Config{TickInterval: 10 * time.Millisecond, Clock: clock})
	t.Cleanup(keeper.Close)
	return keeper, clock
}

func TestNewStartsStopped(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	assert.Equal(t, StateStopped, keeper.State())
	assert.Zero(t, keeper.Elapsed())
}

func TestElapsedMatchesRunningTimeUnderJitter(t *testing.T) {
	keeper, clock := newTestKeeper(t)

	// Irregular callback delays, including ones far past the nominal tick.
	steps := []time.Duration{
		3 * time.Millisecond,
		10 * time.Millisecond,
		47 * time.Millisecond,
		250 * time.Millisecond,
		1 * time.Millisecond,
		2 * time.Second,
	}

	var want time.Duration
	last := time.Duration(0)
	for round := 0; round < 3; round++ {
		keeper.Start()
		for _, step := range steps {
			clock.Advance(step)
			keeper.tick()
			want += step

			current := keeper.Elapsed()
			assert.GreaterOrEqual(t, current, last, "elapsed went backwards")
			last = current
		}
		keeper.Stop()

		// Time spent stopped is not counted.
		clock.Advance(time.Minute)
		keeper.tick()
	}

	assert.Equal(t, want, keeper.Elapsed())
	assert.Equal(t, StateStopped, keeper.State())
}

func TestDelayedTickCountsWallTimeNotTickCount(t *testing.T) {
	keeper, clock := newTestKeeper(t)
	keeper.Start()

	// A single callback arriving 35 intervals late must still add 350ms.
	clock.Advance(350 * time.Millisecond)
	keeper.tick()

	assert.Equal(t, 350*time.Millisecond, keeper.Elapsed())
}

func TestStopFlushesPartialInterval(t *testing.T) {
	keeper, clock := newTestKeeper(t)
	keeper.Start()
	clock.Advance(7 * time.Millisecond)
	keeper.Stop()

	assert.Equal(t, 7*time.Millisecond, keeper.Elapsed())
}

func TestStartIsIdempotent(t *testing.T) {
	keeper, clock := newTestKeeper(t)
	keeper.Start()
	clock.Advance(40 * time.Millisecond)
	keeper.Start()
	clock.Advance(60 * time.Millisecond)
	keeper.Stop()

	assert.Equal(t, 100*time.Millisecond, keeper.Elapsed())
}

func TestResetFromAnyState(t *testing.T) {
	keeper, clock := newTestKeeper(t)

	keeper.Reset()
	assert.Zero(t, keeper.Elapsed())
	assert.Equal(t, StateStopped, keeper.State())

	keeper.Start()
	clock.Advance(time.Second)
	keeper.Reset()
	assert.Zero(t, keeper.Elapsed())
	assert.Equal(t, StateStopped, keeper.State())

	keeper.SetElapsed(time.Hour)
	keeper.Reset()
	assert.Zero(t, keeper.Elapsed())
}

func TestSetElapsedKeepsStateAndBumpsEpoch(t *testing.T) {
	keeper, clock := newTestKeeper(t)
	before := keeper.Epoch()

	keeper.SetElapsed(5 * time.Second)
	assert.Equal(t, StateStopped, keeper.State())
	assert.Equal(t, 5*time.Second, keeper.Elapsed())
	assert.Equal(t, before+1, keeper.Epoch())

	keeper.Start()
	clock.Advance(time.Second)
	keeper.SetElapsed(time.Minute)
	assert.Equal(t, StateRunning, keeper.State())

	// The anchor moves with the override, so earlier running time is not re-added.
	clock.Advance(2 * time.Second)
	keeper.Stop()
	assert.Equal(t, time.Minute+2*time.Second, keeper.Elapsed())
}

func TestSetElapsedClampsNegative(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	keeper.SetElapsed(-time.Second)
	assert.Zero(t, keeper.Elapsed())
}

func TestTickLoopPublishesElapsed(t *testing.T) {
	keeper, clock := newTestKeeper(t)
	events := keeper.Subscribe(64)

	keeper.Start()
	clock.Advance(10 * time.Millisecond)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event, ok := <-events:
			require.True(t, ok, "events closed early")
			if event.Type == EventElapsed && event.Elapsed >= 10*time.Millisecond {
				assert.Equal(t, StateRunning, event.State)
				return
			}
		case <-timeout:
			t.Fatal("no elapsed event from tick loop")
		}
	}
}

func TestStopPublishesFinalElapsedThenStateChange(t *testing.T) {
	keeper, clock := newTestKeeper(t)
	keeper.Start()
	events := keeper.Subscribe(16)

	clock.Advance(3 * time.Millisecond)
	keeper.Stop()

	var got []Event
	for len(got) < 2 {
		select {
		case event := <-events:
			if event.Type == EventElapsed && event.State == StateRunning {
				continue
			}
			got = append(got, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 2 events, got %d", len(got))
		}
	}
	assert.Equal(t, EventElapsed, got[0].Type)
	assert.Equal(t, 3*time.Millisecond, got[0].Elapsed)
	assert.Equal(t, EventStateChange, got[1].Type)
	assert.Equal(t, StateStopped, got[1].State)
}

func TestCloseClosesSubscribersAndIgnoresStart(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	events := keeper.Subscribe(1)
	keeper.Close()

	_, ok := <-events
	assert.False(t, ok)

	keeper.Start()
	assert.Equal(t, StateStopped, keeper.State())

	late := keeper.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}
