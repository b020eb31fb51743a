package timekeeper

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTickInterval is the nominal tick resolution.
const DefaultTickInterval = 10 * time.Millisecond

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Clock        clockwork.Clock
}

// TimeKeeper is a start/stop stopwatch. Each tick adds the wall-clock time
// since the previous tick, so late or throttled ticks never lose time.
type TimeKeeper struct {
	mu       sync.Mutex
	options  Config
	state    State
	elapsed  time.Duration
	lastTick time.Time
	epoch    uint64
	events   []chan Event
	ticker   clockwork.Ticker
	stopCh   chan struct{}
	closed   bool
}

// New creates a stopped TimeKeeper with zero elapsed time.
func New(options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	return &TimeKeeper{
		options: options,
		state:   StateStopped,
	}
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		close(ch)
		return ch
	}
	keeper.events = append(keeper.events, ch)
	return ch
}

// Start launches the ticking loop. Calling Start while running does nothing.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	if keeper.closed || keeper.state == StateRunning {
		keeper.mu.Unlock()
		return
	}
	now := keeper.options.Clock.Now()
	keeper.state = StateRunning
	keeper.lastTick = now
	ticker := keeper.options.Clock.NewTicker(keeper.options.TickInterval)
	stopCh := make(chan struct{})
	keeper.ticker = ticker
	keeper.stopCh = stopCh
	keeper.emitLocked(Event{
		Type:    EventStateChange,
		State:   StateRunning,
		Elapsed: keeper.elapsed,
		Epoch:   keeper.epoch,
		At:      now,
	})
	keeper.mu.Unlock()

	go keeper.run(ticker, stopCh)
}

// Stop cancels the ticking loop and keeps the elapsed time, including the
// partial interval since the last tick.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.stopLocked()
}

// Reset stops the timer and zeroes elapsed time.
func (keeper *TimeKeeper) Reset() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.stopLocked()
	keeper.elapsed = 0
	keeper.emitElapsedLocked(keeper.options.Clock.Now())
}

// SetElapsed overrides elapsed time without changing the running state.
func (keeper *TimeKeeper) SetElapsed(value time.Duration) {
	if value < 0 {
		value = 0
	}
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	now := keeper.options.Clock.Now()
	keeper.elapsed = value
	keeper.epoch++
	if keeper.state == StateRunning {
		keeper.lastTick = now
	}
	keeper.emitElapsedLocked(now)
}

// Elapsed returns the accumulated time as of the last tick.
func (keeper *TimeKeeper) Elapsed() time.Duration {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.elapsed
}

// State returns the current state.
func (keeper *TimeKeeper) State() State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// Running reports whether the timer is running.
func (keeper *TimeKeeper) Running() bool {
	return keeper.State() == StateRunning
}

// Epoch returns the current seeding epoch.
func (keeper *TimeKeeper) Epoch() uint64 {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.epoch
}

// Close stops the timer and closes all observer channels.
func (keeper *TimeKeeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.stopLocked()
	keeper.closed = true
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (keeper *TimeKeeper) run(ticker clockwork.Ticker, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			keeper.tick()
		}
	}
}

func (keeper *TimeKeeper) tick() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.state != StateRunning {
		return
	}
	now := keeper.options.Clock.Now()
	keeper.advanceLocked(now)
	keeper.emitElapsedLocked(now)
}

func (keeper *TimeKeeper) stopLocked() {
	if keeper.state != StateRunning {
		return
	}
	now := keeper.options.Clock.Now()
	keeper.advanceLocked(now)
	keeper.state = StateStopped
	keeper.ticker.Stop()
	close(keeper.stopCh)
	keeper.ticker = nil
	keeper.stopCh = nil

	keeper.emitElapsedLocked(now)
	keeper.emitLocked(Event{
		Type:    EventStateChange,
		State:   StateStopped,
		Elapsed: keeper.elapsed,
		Epoch:   keeper.epoch,
		At:      now,
	})
}

func (keeper *TimeKeeper) advanceLocked(now time.Time) {
	if delta := now.Sub(keeper.lastTick); delta > 0 {
		keeper.elapsed += delta
	}
	keeper.lastTick = now
}

func (keeper *TimeKeeper) emitElapsedLocked(now time.Time) {
	keeper.emitLocked(Event{
		Type:    EventElapsed,
		State:   keeper.state,
		Elapsed: keeper.elapsed,
		Epoch:   keeper.epoch,
		At:      now,
	})
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}
