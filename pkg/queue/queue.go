package queue

import (
	"context"
	"fmt"
)

func New[T any](concurrency int) *Queue[T] {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Queue[T]{
		lanes: make(map[string]*lane[T]),
		slots: make(chan struct{}, concurrency),
	}
}

// Submit enqueues task behind every task previously submitted with the same key.
// Each accepted task runs exactly once; after Close the returned future fails with ErrClosed.
func (q *Queue[T]) Submit(key string, task Task[T]) *Future[T] {
	future := newFuture[T]()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		var zero T
		future.resolve(zero, ErrClosed)
		return future
	}

	q.pending++
	l, running := q.lanes[key]
	if !running {
		l = &lane[T]{}
		q.lanes[key] = l
	}
	l.jobs = append(l.jobs, &job[T]{task: task, future: future})

	if !running {
		q.wg.Add(1)
		go q.drain(key, l)
	}

	return future
}

// drain runs the jobs of one lane until it is empty. A lane only holds a
// concurrency slot while one of its tasks is running.
func (q *Queue[T]) drain(key string, l *lane[T]) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(l.jobs) == 0 {
			delete(q.lanes, key)
			q.mu.Unlock()
			return
		}
		next := l.jobs[0]
		l.jobs[0] = nil
		l.jobs = l.jobs[1:]
		q.mu.Unlock()

		q.slots <- struct{}{}
		result, err := run(next.task)
		<-q.slots

		q.mu.Lock()
		q.pending--
		q.mu.Unlock()

		next.future.resolve(result, err)
	}
}

func run[T any](task Task[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task()
}

// Pending returns the number of tasks queued or running.
func (q *Queue[T]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Close stops accepting tasks and waits for the accepted ones to finish.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(result T, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Done is closed once the task has run.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task has run or ctx is done. A cancelled wait does not cancel the task.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
