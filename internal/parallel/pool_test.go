package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestWorkerPool tests task submission and shutdown.
func TestWorkerPool(t *testing.T) {
	t.Run("runs submitted tasks", func(t *testing.T) {
		pool := NewWorkerPool(4)
		defer pool.Shutdown()

		var count atomic.Int64
		done := make(chan struct{}, 10)
		for i := 0; i < 10; i++ {
			if err := pool.Submit(context.Background(), func() {
				count.Add(1)
				done <- struct{}{}
			}); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
		}
		for i := 0; i < 10; i++ {
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("Timed out waiting for tasks")
			}
		}
		if count.Load() != 10 {
			t.Errorf("Expected 10 tasks, got %d", count.Load())
		}
	})

	t.Run("defaults to CPU count", func(t *testing.T) {
		pool := NewWorkerPool(0)
		defer pool.Shutdown()
		if pool.Workers() <= 0 {
			t.Errorf("Expected a positive worker count, got %d", pool.Workers())
		}
	})

	t.Run("submit after shutdown", func(t *testing.T) {
		pool := NewWorkerPool(1)
		pool.Shutdown()
		pool.Shutdown()
		if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolShutdown) {
			t.Errorf("Expected ErrPoolShutdown, got %v", err)
		}
	})
}

// TestWorkerPoolForEach tests indexed fan-out.
func TestWorkerPoolForEach(t *testing.T) {
	t.Run("visits every index once", func(t *testing.T) {
		pool := NewWorkerPool(3)
		defer pool.Shutdown()

		seen := make([]int32, 100)
		n, err := pool.ForEach(context.Background(), len(seen), func(i int) {
			atomic.AddInt32(&seen[i], 1)
		})
		if err != nil || n != len(seen) {
			t.Fatalf("Expected %d submitted and no error, got %d, %v", len(seen), n, err)
		}
		for i, c := range seen {
			if c != 1 {
				t.Errorf("Index %d visited %d times", i, c)
			}
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		pool := NewWorkerPool(1)
		defer pool.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		release := make(chan struct{})
		block := func(i int) { <-release }
		go func() {
			time.Sleep(10 * time.Millisecond)
			close(release)
		}()
		n, err := pool.ForEach(ctx, 50, block)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if n >= 50 {
			t.Errorf("Expected submission to stop early, got %d", n)
		}
	})
}
