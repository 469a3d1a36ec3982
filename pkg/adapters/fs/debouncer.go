package fs

import (
	"sync"
	"time"

	"github.com/aretw0/notebox/pkg/core"
)

// debouncer coalesces bursts of events for the same path into one.
// Atomic writes produce several raw fsnotify events per save.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*core.Event
	wg      sync.WaitGroup
	timers  map[string]*time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*core.Event),
		timers:  make(map[string]*time.Timer),
	}
}

// merge keeps CREATE when a freshly created file is then written to.
func merge(prev, next core.Event) core.Event {
	if prev.Type == core.EventCreate && next.Type == core.EventModify {
		next.Type = core.EventCreate
	}
	return next
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[e.Path]; ok {
		merged := merge(*prev, e)
		d.pending[e.Path] = &merged
		return
	}

	ev := e
	d.pending[e.Path] = &ev
	d.wg.Add(1)
	d.timers[e.Path] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		out := d.pending[e.Path]
		delete(d.pending, e.Path)
		delete(d.timers, e.Path)
		d.mu.Unlock()

		if out != nil {
			fire(*out)
		}
	})
}

// stopAndWait drops pending events and waits for in-flight fires.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for p, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, p)
		delete(d.pending, p)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
