package main

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event is the closed set of values producers hand to the UI loop.
type Event interface {
	event()
}

type ScanStarted struct {
	Root string
}

type ScanProgress struct {
	Visited uint64
}

type ScanFound struct {
	Path     string
	RelPath  string
	Target   string
	Category string
	Size     uint64
}

type ScanFinished struct {
	Visited  uint64
	Found    uint64
	Warnings []string
	Elapsed  time.Duration
	Err      error
}

type Deleting struct {
	Path string
	Size uint64
}

type Deleted struct {
	Path string
	Size uint64
}

type DeleteFailed struct {
	Path   string
	Size   uint64
	Reason string
}

type Tick struct {
	At time.Time
}

func (ScanStarted) event()  {}
func (ScanProgress) event() {}
func (ScanFound) event()    {}
func (ScanFinished) event() {}
func (Deleting) event()     {}
func (Deleted) event()      {}
func (DeleteFailed) event() {}
func (Tick) event()         {}

var errBusClosed = errors.New("event bus closed")

// eventBus is an unbounded multi-producer, single-consumer queue. Send never
// blocks; Next blocks until an event is available or the bus is closed and
// drained.
type eventBus struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	notify chan struct{}
}

func newEventBus() *eventBus {
	return &eventBus{notify: make(chan struct{}, 1)}
}

func (b *eventBus) Send(ev Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errBusClosed
	}
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

func (b *eventBus) Next(ctx context.Context) (Event, error) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			ev := b.queue[0]
			b.queue[0] = nil
			b.queue = b.queue[1:]
			b.mu.Unlock()
			return ev, nil
		}
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return nil, errBusClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.notify:
		}
	}
}

func (b *eventBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *eventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}
