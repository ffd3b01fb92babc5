package session

import "sync"

// Queue is a serialized executor. One goroutine owns every closure submitted,
// in FIFO order; this is the exclusivity boundary for all hardware mutation.
// No two attach/detach/start/stop operations ever run concurrently.
type Queue struct {
	name  string
	tasks chan task

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

type task struct {
	fn   func()
	done chan struct{}
}

// NewQueue creates and starts a serialized executor.
func NewQueue(name string) *Queue {
	q := &Queue{
		name:  name,
		tasks: make(chan task, 64),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for t := range q.tasks {
		t.fn()
		if t.done != nil {
			close(t.done)
		}
	}
}

// Do submits fn for asynchronous execution. Submission order is execution
// order. After Close the closure is dropped.
func (q *Queue) Do(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks <- task{fn: fn}
	q.mu.Unlock()
}

// DoWait submits fn and blocks until it has run.
// After Close it returns immediately without running fn.
func (q *Queue) DoWait(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	done := make(chan struct{})
	q.tasks <- task{fn: fn, done: done}
	q.mu.Unlock()
	<-done
}

// Close stops accepting work and waits for queued closures to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	<-q.done
}
