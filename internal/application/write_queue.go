package application

import (
	"context"
	"sync"
)

// writeQueue runs persistence jobs one at a time in submission order.
type writeQueue struct {
	mu     sync.Mutex
	jobs   []func()
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newWriteQueue() *writeQueue {
	q := &writeQueue{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *writeQueue) push(job func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *writeQueue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.jobs) == 0 {
			if q.closed {
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
			<-q.signal
			q.mu.Lock()
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		job()
	}
}

// wait blocks until every job pushed before the call has finished.
func (q *writeQueue) wait(ctx context.Context) error {
	barrier := make(chan struct{})
	if !q.push(func() { close(barrier) }) {
		select {
		case <-q.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains the remaining jobs and stops the worker.
func (q *writeQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	<-q.done
}
