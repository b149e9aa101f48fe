package icp

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer batches events until duration passes without a new one. Callbacks
// never overlap: a batch that fires while the previous callback is still
// running waits for it.
type debouncer struct {
	mu       sync.Mutex
	runMu    sync.Mutex
	duration time.Duration
	timer    *time.Timer
	events   []fsnotify.Event
	callback func(events []fsnotify.Event)
}

func newDebouncer(duration time.Duration, callback func(events []fsnotify.Event)) *debouncer {
	return &debouncer{duration: duration, callback: callback}
}

func (d *debouncer) addEvent(evt fsnotify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events = append(d.events, evt)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	events := d.events
	d.events = nil
	d.timer = nil
	d.mu.Unlock()

	if len(events) == 0 {
		return
	}

	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.callback(events)
}
