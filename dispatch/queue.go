package dispatch

import (
	"context"
	"errors"
)

// DefaultCapacity is the queue capacity used when none is given.
const DefaultCapacity = 100

// ErrQueueFull is returned by Put when the queue has no room.
var ErrQueueFull = errors.New("queue full")

// Queue is a named, bounded FIFO of commands with any number of writers
// and at most one reader.
type Queue struct {
	name string
	ch   chan Command
}

// NewQueue creates a queue. A capacity of zero or less uses
// DefaultCapacity.
func NewQueue(name string, capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{name: name, ch: make(chan Command, capacity)}
}

func (q *Queue) Name() string { return q.name }
func (q *Queue) Len() int     { return len(q.ch) }
func (q *Queue) Cap() int     { return cap(q.ch) }

// Put enqueues cmd without blocking.
func (q *Queue) Put(cmd Command) error {
	select {
	case q.ch <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// PutContext enqueues cmd, waiting for room until ctx is done.
func (q *Queue) PutContext(ctx context.Context, cmd Command) error {
	select {
	case q.ch <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryGet dequeues one command without blocking.
func (q *Queue) TryGet() (Command, bool) {
	select {
	case cmd := <-q.ch:
		return cmd, true
	default:
		return Command{}, false
	}
}
