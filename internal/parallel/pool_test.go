package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	if want := runtime.GOMAXPROCS(0); pool.Workers() != want {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), want)
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
}

func TestWorkerPool_ExecuteAllEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()
	pool.ExecuteAll(nil)
}

func TestWorkerPool_NestedSubmit(t *testing.T) {
	// Work items that submit more work must not deadlock, even when every
	// worker is busy submitting.
	pool := NewWorkerPool(2)
	defer pool.Close()

	var wg sync.WaitGroup
	var counter atomic.Int64
	var spawn func(depth int)
	spawn = func(depth int) {
		defer wg.Done()
		counter.Add(1)
		if depth == 0 {
			return
		}
		for range 4 {
			wg.Add(1)
			pool.Submit(func() { spawn(depth - 1) })
		}
	}
	wg.Add(1)
	pool.Submit(func() { spawn(4) })

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("nested submit deadlocked")
	}
	// 1 + 4 + 16 + 64 + 256
	if counter.Load() != 341 {
		t.Errorf("counter = %d, want 341", counter.Load())
	}
}

func TestWorkerPool_ClosedRunsInline(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close() // idempotent

	ran := false
	pool.Submit(func() { ran = true })
	if !ran {
		t.Error("Submit on a closed pool should run inline")
	}

	var n atomic.Int32
	pool.ExecuteAll([]func(){func() { n.Add(1) }, func() { n.Add(1) }})
	if n.Load() != 2 {
		t.Errorf("ExecuteAll on closed pool ran %d items, want 2", n.Load())
	}
}

func TestWorkerPool_ExecuteAllDuringClose(t *testing.T) {
	for range 50 {
		pool := NewWorkerPool(4)

		var counter atomic.Int64
		finished := make(chan struct{})
		go func() {
			defer close(finished)
			for range 20 {
				work := make([]func(), 64)
				for i := range work {
					work[i] = func() { counter.Add(1) }
				}
				pool.ExecuteAll(work)
			}
		}()
		pool.Close()

		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatal("ExecuteAll blocked across Close")
		}
		if got := counter.Load(); got != 20*64 {
			t.Errorf("counter = %d, want %d", got, 20*64)
		}
	}
}

func TestWorkerPool_CloseRunsQueuedWork(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				pool.Submit(func() { counter.Add(1) })
			}
		}()
	}
	pool.Close()
	wg.Wait()

	if got := counter.Load(); got != 800 {
		t.Errorf("counter = %d, want 800", got)
	}
}
