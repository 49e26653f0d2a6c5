package watcher

import (
	"context"
	"sync"
	"time"
)

// eventBatch collects the events for one path while its timer runs.
type eventBatch struct {
	path      string
	events    []Event
	lastEvent Event
	timer     *time.Timer
}

// Debouncer coalesces rapid event bursts per path. A path's batch is flushed
// once no new event has arrived for delay, or unconditionally after maxDelay.
type Debouncer struct {
	delay         time.Duration
	maxDelay      time.Duration
	eventChan     chan []Event
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.Mutex
	wg            sync.WaitGroup
	closed        bool
	pendingEvents map[string]*eventBatch
}

// NewDebouncer creates a debouncer with the given flush windows.
func NewDebouncer(delay, maxDelay time.Duration, queueCapacity int) *Debouncer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Debouncer{
		delay:         delay,
		maxDelay:      maxDelay,
		eventChan:     make(chan []Event, queueCapacity),
		ctx:           ctx,
		cancel:        cancel,
		pendingEvents: make(map[string]*eventBatch),
	}
}

// Add records an event and restarts its path's flush timer.
func (d *Debouncer) Add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	batch, exists := d.pendingEvents[event.Path]
	if !exists {
		batch = &eventBatch{
			path:   event.Path,
			events: make([]Event, 0, 5),
		}
		d.pendingEvents[event.Path] = batch
	}

	batch.events = append(batch.events, event)
	batch.lastEvent = event

	if batch.timer != nil {
		batch.timer.Stop()
	}

	batch.timer = time.AfterFunc(d.delay, func() {
		d.flush(event.Path)
	})

	if !exists {
		// Cap how long a steadily-written file can postpone its flush.
		time.AfterFunc(d.maxDelay, func() {
			d.mu.Lock()
			b, pending := d.pendingEvents[event.Path]
			if pending && b.timer != nil {
				b.timer.Stop()
			}
			d.mu.Unlock()
			if pending {
				d.flush(event.Path)
			}
		})
	}
}

// Events returns the channel of flushed batches.
func (d *Debouncer) Events() <-chan []Event {
	return d.eventChan
}

// flush hands a path's accumulated events downstream. The WaitGroup entry is
// taken under the same lock that Close uses to set closed, so Close never
// closes the channel while a send is in flight.
func (d *Debouncer) flush(path string) {
	d.mu.Lock()
	batch, exists := d.pendingEvents[path]
	if !exists || d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pendingEvents, path)
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()

	select {
	case d.eventChan <- batch.events:
	case <-d.ctx.Done():
	}
}

// Close stops all timers, waits for in-flight flushes to drain and closes
// the batch channel.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.cancel()
	for _, batch := range d.pendingEvents {
		if batch.timer != nil {
			batch.timer.Stop()
		}
	}
	d.pendingEvents = make(map[string]*eventBatch)
	d.mu.Unlock()

	d.wg.Wait()
	close(d.eventChan)
}
