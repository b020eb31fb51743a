// Package refresh collapses bursts of change signals into single redraws on
// the fyne main goroutine.
package refresh

import (
	"sync"

	"fyne.io/fyne/v2"
)

// Coalescer runs fn once per burst of Trigger calls. Trigger never blocks,
// so it is safe to call while holding locks.
type Coalescer struct {
	fn     func()
	run    func(func())
	signal chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// New starts a coalescer that redraws with fyne.DoAndWait.
func New(fn func()) *Coalescer {
	return newWithRunner(fn, fyne.DoAndWait)
}

func newWithRunner(fn func(), run func(func())) *Coalescer {
	coalescer := &Coalescer{
		fn:     fn,
		run:    run,
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go coalescer.loop()
	return coalescer
}

// Trigger requests a redraw.
func (coalescer *Coalescer) Trigger() {
	select {
	case coalescer.signal <- struct{}{}:
	default:
	}
}

// Stop ends the loop. Pending redraws are dropped.
func (coalescer *Coalescer) Stop() {
	coalescer.once.Do(func() {
		close(coalescer.stop)
	})
}

func (coalescer *Coalescer) loop() {
	for {
		select {
		case <-coalescer.stop:
			return
		case <-coalescer.signal:
			select {
			case <-coalescer.stop:
				return
			default:
			}
			coalescer.run(coalescer.fn)
		}
	}
}
