package timekeeper

import "time"

// State represents the current TimeKeeper mode.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventElapsed     EventType = "elapsed"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type    EventType
	State   State
	Elapsed time.Duration
	// Epoch changes whenever elapsed is seeded with SetElapsed, so observers
	// can drop events queued for a previous binding.
	Epoch uint64
	At    time.Time
}
