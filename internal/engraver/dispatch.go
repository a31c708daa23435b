package engraver

import (
	"context"
	"sync"
)

// Dispatcher runs result callbacks on the execution context the result
// consumer requires. Dispatch must not block the worker for long.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// Inline runs callbacks directly on the worker goroutine.
type Inline struct{}

// Dispatch calls fn.
func (Inline) Dispatch(fn func()) error {
	fn()
	return nil
}

// Loop hands callbacks to a consumer goroutine, typically a UI thread.
//
// The queue is unbounded so Dispatch never blocks the worker. Callbacks run
// in dispatch order on whichever goroutine calls Run or Drain.
type Loop struct {
	mu     sync.Mutex
	calls  []func()
	closed bool
	signal chan struct{} // Signals call availability (buffered, size 1)
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{
		calls:  make([]func(), 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// Dispatch queues fn. Returns ErrClosed if the loop is closed.
func (l *Loop) Dispatch(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.calls = append(l.calls, fn)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case l.signal <- struct{}{}:
	default:
	}
	return nil
}

// tryNext removes the oldest queued call.
func (l *Loop) tryNext() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.calls) == 0 {
		return nil, false
	}
	fn := l.calls[0]
	// Nil out the slot so the closure and its captured document can be
	// collected.
	l.calls[0] = nil
	if len(l.calls) == 1 {
		l.calls = l.calls[:0]
	} else {
		l.calls = l.calls[1:]
	}
	return fn, true
}

// Drain runs every queued call on the current goroutine and returns how
// many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		fn, ok := l.tryNext()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Len returns the number of queued calls.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// Run executes calls until ctx is cancelled or the loop is closed and
// drained.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-l.signal:
			if !ok {
				l.Drain()
				return nil
			}
		}
	}
}

// Close stops accepting calls and wakes Run.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.signal)
}
