package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesDistinctKeys(t *testing.T) {
	var processed int32
	done := make(chan struct{}, 3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{Key: key}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
}

func TestQueueCoalescesPendingKey(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []interface{}
	q := NewQueue("coalesce", func(ctx context.Context, job Job) error {
		if job.Payload == 0 {
			<-release
		}
		mu.Lock()
		seen = append(seen, job.Payload)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Key: "snap", Payload: 0}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, time.Millisecond)

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Enqueue(Job{Key: "snap", Payload: i}))
	}
	assert.Equal(t, 1, q.Pending())
	assert.ErrorIs(t, q.Enqueue(Job{Key: "other"}), ErrQueueFull)

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, []interface{}{0, 5}, seen)
}

func TestQueueRetriesFailures(t *testing.T) {
	var attempts int32
	done := make(chan Job, 1)
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("boom")
		}
		done <- job
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Key: "flaky"}))
	select {
	case job := <-done:
		assert.Equal(t, 2, job.Attempt)
	case <-time.After(time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var attempts int32
	q := NewQueue("doomed", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Key: "x"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestQueueRejectsOutsideRunningState(t *testing.T) {
	q := NewQueue("lifecycle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{Key: "early"}), ErrQueueClosed)

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(Job{Key: "late"}), ErrQueueClosed)
}
