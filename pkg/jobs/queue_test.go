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

func TestQueueProcessesAndDrainsOnStop(t *testing.T) {
	var handled int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{BufferSize: 16})
	q.Start(context.Background())

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "noop"}))
	}
	q.Stop()

	assert.Equal(t, int32(10), atomic.LoadInt32(&handled))
	assert.ErrorIs(t, q.Enqueue(Job{ID: "late"}), ErrQueueStopped)
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{ID: "early"}), ErrQueueStopped)
}

func TestQueueDropsWithoutRetryByDefault(t *testing.T) {
	var attempts int32
	var mu sync.Mutex
	var dropped []Job
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("remote down")
	}, QueueConfig{OnDrop: func(j Job, err error) {
		mu.Lock()
		dropped = append(dropped, j)
		mu.Unlock()
	}})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "w1", Type: "upsert_fee"}))
	q.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, dropped, 1)
	assert.Equal(t, 1, dropped[0].Attempt)
}

func TestQueueRetriesWhenConfigured(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := NewQueue("test", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("flaky")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "w1"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(context.Context, Job) error {
		<-block
		return nil
	}, QueueConfig{BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	var full bool
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(Job{ID: "b"}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	close(block)
	q.Stop()
	assert.True(t, full)
}
