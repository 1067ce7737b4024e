package queue_test

import (
	"context"
	"errors"
	"feed-notifier/pkg/queue"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAll[T any](t *testing.T, futures []*queue.Future[T]) ([]T, []error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := make([]T, len(futures))
	errs := make([]error, len(futures))
	for i, future := range futures {
		results[i], errs[i] = future.Wait(ctx)
		require.NotErrorIs(t, errs[i], context.DeadlineExceeded)
	}
	return results, errs
}

func TestSameKeyRunsInSubmissionOrderWithoutOverlap(t *testing.T) {
	q := queue.New[int](8)
	defer q.Close()

	const submissions = 50
	var (
		mu      sync.Mutex
		order   []int
		running atomic.Int32
		overlap atomic.Bool
	)

	futures := make([]*queue.Future[int], 0, submissions)
	for i := 0; i < submissions; i++ {
		i := i
		futures = append(futures, q.Submit("tt0944947", func() (int, error) {
			if running.Add(1) > 1 {
				overlap.Store(true)
			}
			defer running.Add(-1)

			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}))
	}

	results, errs := waitAll(t, futures)
	for i := range futures {
		assert.NoError(t, errs[i])
		assert.Equal(t, i, results[i])
	}

	assert.False(t, overlap.Load())
	require.Len(t, order, submissions)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestDistinctKeysRunConcurrently(t *testing.T) {
	q := queue.New[struct{}](2)
	defer q.Close()

	started := make(chan string, 2)
	release := make(chan struct{})

	futures := []*queue.Future[struct{}]{
		q.Submit("a", func() (struct{}, error) { started <- "a"; <-release; return struct{}{}, nil }),
		q.Submit("b", func() (struct{}, error) { started <- "b"; <-release; return struct{}{}, nil }),
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("tasks with distinct keys did not start concurrently")
		}
	}
	close(release)

	_, errs := waitAll(t, futures)
	assert.Equal(t, []error{nil, nil}, errs)
}

func TestConcurrencyIsBounded(t *testing.T) {
	const limit = 3
	q := queue.New[struct{}](limit)
	defer q.Close()

	var (
		running atomic.Int32
		peak    atomic.Int32
	)

	futures := make([]*queue.Future[struct{}], 0, 20)
	for i := 0; i < 20; i++ {
		futures = append(futures, q.Submit(fmt.Sprintf("feed-%d", i), func() (struct{}, error) {
			current := running.Add(1)
			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		}))
	}

	waitAll(t, futures)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
}

func TestFailureIsDeliveredOnlyToItsCaller(t *testing.T) {
	q := queue.New[string](4)
	defer q.Close()

	errUpstream := errors.New("upstream unavailable")
	futures := []*queue.Future[string]{
		q.Submit("a", func() (string, error) { return "", errUpstream }),
		q.Submit("a", func() (string, error) { return "a-2", nil }),
		q.Submit("b", func() (string, error) { return "b-1", nil }),
	}

	results, errs := waitAll(t, futures)
	assert.ErrorIs(t, errs[0], errUpstream)
	assert.NoError(t, errs[1])
	assert.Equal(t, "a-2", results[1])
	assert.NoError(t, errs[2])
	assert.Equal(t, "b-1", results[2])
}

func TestPanicIsConvertedToError(t *testing.T) {
	q := queue.New[int](1)
	defer q.Close()

	futures := []*queue.Future[int]{
		q.Submit("a", func() (int, error) { panic("boom") }),
		q.Submit("a", func() (int, error) { return 2, nil }),
	}

	results, errs := waitAll(t, futures)
	assert.ErrorIs(t, errs[0], queue.ErrTaskPanicked)
	assert.NoError(t, errs[1])
	assert.Equal(t, 2, results[1])
}

func TestEverySubmissionRunsOnce(t *testing.T) {
	q := queue.New[struct{}](4)
	defer q.Close()

	var runs atomic.Int32
	var wg sync.WaitGroup
	futures := make([]*queue.Future[struct{}], 100)
	for i := range futures {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			futures[i] = q.Submit(fmt.Sprintf("feed-%d", i%5), func() (struct{}, error) {
				runs.Add(1)
				return struct{}{}, nil
			})
		}(i)
	}
	wg.Wait()

	waitAll(t, futures)
	assert.Equal(t, int32(100), runs.Load())
	assert.Zero(t, q.Pending())
}

func TestSubmitAfterClose(t *testing.T) {
	q := queue.New[int](1)

	var ran atomic.Bool
	accepted := q.Submit("a", func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		ran.Store(true)
		return 1, nil
	})
	q.Close()
	assert.True(t, ran.Load())

	result, err := accepted.Wait(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result)

	_, err = q.Submit("a", func() (int, error) { return 0, nil }).Wait(context.Background())
	assert.ErrorIs(t, err, queue.ErrClosed)
}

func TestWaitHonoursContext(t *testing.T) {
	q := queue.New[int](1)
	release := make(chan struct{})
	defer q.Close()
	defer close(release)

	future := q.Submit("a", func() (int, error) { <-release; return 0, nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := future.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-future.Done():
		t.Fatal("task should still be running")
	default:
	}
}
