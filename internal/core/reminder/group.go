package reminder

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Group shares one Scheduler between every holder bound to the same key, so
// several windows showing one section produce a single reminder per interval.
// The shared reminder is armed only while no holder of the key is running.
type Group struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]*entry
	nextID  int
}

type entry struct {
	scheduler *Scheduler
	holders   map[int]*Handle
	running   bool
}

// Handle is one holder's view of a Group.
type Handle struct {
	group    *Group
	id       int
	notify   func()
	key      string
	enabled  bool
	interval time.Duration
	running  bool
	closed   bool
}

// NewGroup creates an empty group.
func NewGroup(clock clockwork.Clock) *Group {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Group{clock: clock, entries: map[string]*entry{}}
}

// Join registers a holder that is not bound to any key yet. notify runs on a
// scheduler goroutine when this holder is chosen to deliver a reminder.
func (group *Group) Join(notify func()) *Handle {
	group.mu.Lock()
	defer group.mu.Unlock()
	group.nextID++
	return &Handle{group: group, id: group.nextID, notify: notify}
}

// Bind moves the holder to key. An empty key leaves the group's schedulers.
func (handle *Handle) Bind(key string) {
	group := handle.group
	group.mu.Lock()
	defer group.mu.Unlock()
	if handle.closed || key == handle.key {
		return
	}
	group.leaveLocked(handle)
	handle.key = key
	if key == "" {
		return
	}
	current, ok := group.entries[key]
	if !ok {
		current = &entry{holders: map[int]*Handle{}}
		current.scheduler = New(group.clock, func() { group.fire(current) })
		group.entries[key] = current
	}
	current.holders[handle.id] = handle
	group.applyLocked(current)
}

// Configure updates the holder's flag and interval.
func (handle *Handle) Configure(enabled bool, interval time.Duration) {
	handle.update(func() {
		handle.enabled = enabled
		handle.interval = interval
	})
}

// TimerStarted marks the holder running.
func (handle *Handle) TimerStarted() {
	handle.update(func() { handle.running = true })
}

// TimerStopped marks the holder stopped. The shared reminder re-arms from
// zero once no holder of the key is running.
func (handle *Handle) TimerStopped() {
	handle.update(func() { handle.running = false })
}

// Armed reports whether the holder's key has a reminder scheduled.
func (handle *Handle) Armed() bool {
	group := handle.group
	group.mu.Lock()
	current, ok := group.entries[handle.key]
	group.mu.Unlock()
	return ok && handle.key != "" && current.scheduler.Armed()
}

// Close leaves the group permanently.
func (handle *Handle) Close() {
	group := handle.group
	group.mu.Lock()
	defer group.mu.Unlock()
	if handle.closed {
		return
	}
	group.leaveLocked(handle)
	handle.key = ""
	handle.closed = true
}

func (handle *Handle) update(change func()) {
	group := handle.group
	group.mu.Lock()
	defer group.mu.Unlock()
	if handle.closed {
		return
	}
	change()
	if current, ok := group.entries[handle.key]; ok && handle.key != "" {
		group.applyLocked(current)
	}
}

func (group *Group) leaveLocked(handle *Handle) {
	current, ok := group.entries[handle.key]
	if !ok || handle.key == "" {
		return
	}
	delete(current.holders, handle.id)
	if len(current.holders) == 0 {
		current.scheduler.Close()
		delete(group.entries, handle.key)
		return
	}
	group.applyLocked(current)
}

// applyLocked folds the holders into the shared scheduler: enabled if any
// holder is, using the shortest enabled interval.
func (group *Group) applyLocked(current *entry) {
	var (
		enabled  bool
		running  bool
		interval time.Duration
	)
	for _, holder := range current.holders {
		running = running || holder.running
		if !holder.enabled {
			continue
		}
		if !enabled || holder.interval < interval {
			interval = holder.interval
		}
		enabled = true
	}

	started := running && !current.running
	stopped := !running && current.running
	current.running = running

	if started {
		current.scheduler.TimerStarted()
	}
	current.scheduler.Configure(enabled, interval)
	if stopped {
		current.scheduler.TimerStopped()
	}
}

// fire delivers one reminder through the earliest enabled holder.
func (group *Group) fire(current *entry) {
	group.mu.Lock()
	var chosen *Handle
	for _, holder := range current.holders {
		if holder.enabled && (chosen == nil || holder.id < chosen.id) {
			chosen = holder
		}
	}
	group.mu.Unlock()
	if chosen == nil || chosen.notify == nil {
		return
	}
	chosen.notify()
}
