package queue

import (
	"errors"
	"sync"
)

var (
	ErrClosed       = errors.New("queue is closed")
	ErrTaskPanicked = errors.New("task panicked")
)

// Task is a unit of work run by the queue.
type Task[T any] func() (T, error)

// Queue runs tasks sharing a key one at a time, in submission order, while tasks
// of distinct keys run in parallel up to a global concurrency limit.
type Queue[T any] struct {
	mu      sync.Mutex
	lanes   map[string]*lane[T]
	slots   chan struct{}
	pending int
	closed  bool
	wg      sync.WaitGroup
}

type lane[T any] struct {
	jobs []*job[T]
}

type job[T any] struct {
	task   Task[T]
	future *Future[T]
}

// Future holds the outcome of a submitted task.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
}
