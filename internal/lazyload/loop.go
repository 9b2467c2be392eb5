package lazyload

import (
	"context"
	"sync"
)

// Loop is a single-goroutine owner context for running a Coordinator
// without a UI toolkit. Work queued with Do runs in order on the goroutine
// that called Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// NewLoop creates a loop; call Run to start processing
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Do queues fn and returns immediately. Work queued after the loop stopped
// is dropped.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call queues fn and waits until it ran. It returns false if the loop
// stopped first. Calling it from inside the loop deadlocks.
func (l *Loop) Call(fn func()) bool {
	ran := make(chan struct{})
	l.Do(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Run processes queued work until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.close()

	for {
		for _, fn := range l.drain() {
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed once Run returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	work := l.queue
	l.queue = nil
	return work
}

func (l *Loop) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		l.queue = nil
		close(l.done)
	}
}
