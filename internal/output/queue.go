package output

import (
	"context"
	"io"
	"sync"
)

// Queue is an unbounded FIFO Sink drained by a single consumer.
// AddLine never blocks, so a control thread appending while the consumer is
// busy rendering cannot deadlock, and no line is ever dropped.
type Queue struct {
	mu     sync.Mutex
	lines  []string
	notify chan struct{}
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// AddLine appends text. Lines added after Close are dropped.
func (q *Queue) AddLine(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.lines = append(q.lines, text)

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every pending line in append order.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines := q.lines
	q.lines = nil
	return lines
}

// Next blocks until at least one line is pending and drains the queue.
// It returns io.EOF once the queue is closed and empty, or ctx.Err().
func (q *Queue) Next(ctx context.Context) ([]string, error) {
	for {
		if lines := q.Drain(); len(lines) > 0 {
			return lines, nil
		}

		select {
		case _, ok := <-q.notify:
			if !ok {
				if lines := q.Drain(); len(lines) > 0 {
					return lines, nil
				}
				return nil, io.EOF
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close wakes the consumer; subsequent Next calls return io.EOF once drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.notify)
}
