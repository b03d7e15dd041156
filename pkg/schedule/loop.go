package schedule

import (
	"context"
	"sync/atomic"
	"time"
)

type task struct {
	gen    uint64
	always bool
	fn     func()
}

// Loop is a single-goroutine event loop. Every callback, whether posted
// directly or fired by a timer, runs on the goroutine that called Run, one
// at a time.
//
// A Loop counts page loads as generations. Timers remember the generation
// they were scheduled in and are dropped if a newer page load has started
// by the time they fire; a fresh page supersedes whatever the old one had
// pending.
type Loop struct {
	queue chan task
	done  chan struct{}
	gen   atomic.Uint64
}

// NewLoop returns a loop ready to Run.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan task, 64),
		done:  make(chan struct{}),
	}
}

// Generation returns the current page-load generation.
func (l *Loop) Generation() uint64 {
	return l.gen.Load()
}

// Advance starts a new generation and returns it.
func (l *Loop) Advance() uint64 {
	return l.gen.Add(1)
}

// Post queues fn to run on the loop regardless of generation.
func (l *Loop) Post(fn func()) {
	l.enqueue(task{always: true, fn: fn})
}

// After schedules fn for the current generation. It implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) {
	gen := l.gen.Load()
	time.AfterFunc(d, func() {
		l.enqueue(task{gen: gen, fn: fn})
	})
}

func (l *Loop) enqueue(t task) {
	select {
	case l.queue <- t:
	case <-l.done:
	}
}

// Run processes callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-l.queue:
			if !t.always && t.gen != l.gen.Load() {
				continue
			}
			t.fn()
		}
	}
}
