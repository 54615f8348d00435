package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if pool.ActiveWork() != 0 || pool.QueuedWork() != 0 {
		t.Errorf("new pool busy: active=%d queued=%d", pool.ActiveWork(), pool.QueuedWork())
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

// =============================================================================
// Submit Tests
// =============================================================================

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	done := make(chan struct{})
	if !pool.Submit(func() { close(done) }) {
		t.Fatal("Submit() = false on running pool")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted work did not run")
	}
}

func TestWorkerPool_Submit_Nil(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	if pool.Submit(nil) {
		t.Error("Submit(nil) = true, want false")
	}
}

func TestWorkerPool_SubmitNeverBlocks(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	release := make(chan struct{})
	pool.Submit(func() { <-release })

	// far more items than any bounded queue would hold
	start := time.Now()
	for i := 0; i < 10000; i++ {
		pool.Submit(func() {})
	}
	if time.Since(start) > time.Second {
		t.Error("Submit blocked while the only worker was busy")
	}
	if pool.QueuedWork() == 0 {
		t.Error("QueuedWork() = 0 while the worker is blocked")
	}
	close(release)
}

// submitAll submits work and waits until every item has run.
func submitAll(t *testing.T, pool *WorkerPool, work ...func()) {
	t.Helper()
	var wg sync.WaitGroup
	for _, fn := range work {
		wg.Add(1)
		if !pool.Submit(func() {
			defer wg.Done()
			fn()
		}) {
			wg.Done()
			t.Error("Submit() = false on running pool")
		}
	}
	wg.Wait()
}

func TestWorkerPool_ActiveWork(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	for range 3 {
		pool.Submit(func() {
			started <- struct{}{}
			<-release
		})
	}
	<-started
	<-started

	if got := pool.ActiveWork(); got != 2 {
		t.Errorf("ActiveWork() = %d, want 2", got)
	}
	if got := pool.QueuedWork(); got != 1 {
		t.Errorf("QueuedWork() = %d, want 1", got)
	}
	close(release)
	<-started
}

func TestWorkerPool_PanicRecovered(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	var after atomic.Bool
	submitAll(t, pool,
		func() { panic("render exploded") },
		func() { after.Store(true) },
	)

	if !after.Load() {
		t.Error("work after a panicking item did not run")
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)

	pool.Close()
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Submit() = true after Close")
	}
}

func TestWorkerPool_CloseDrainsQueue(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter atomic.Int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() { counter.Add(1) })
	}
	pool.Close()

	if counter.Load() != 100 {
		t.Errorf("counter = %d after Close, want 100", counter.Load())
	}
}

func TestWorkerPool_OperationsAfterClose(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()

	var executed atomic.Bool

	if pool.Submit(func() { executed.Store(true) }) {
		t.Error("Submit() = true on closed pool")
	}

	time.Sleep(20 * time.Millisecond)
	if executed.Load() {
		t.Error("Work was executed on closed pool")
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestWorkerPool_Concurrent(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work := make([]func(), 50)
			for i := range work {
				work[i] = func() { counter.Add(1) }
			}
			submitAll(t, pool, work...)
		}()
	}
	wg.Wait()

	if counter.Load() != 500 {
		t.Errorf("counter = %d, want 500", counter.Load())
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		pool := NewWorkerPool(4)
		submitAll(t, pool, func() {}, func() {})
		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	if final := runtime.NumGoroutine(); final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorkerPool_Submit(b *testing.B) {
	pool := NewWorkerPool(runtime.GOMAXPROCS(0))
	defer pool.Close()

	var wg sync.WaitGroup
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wg.Add(1)
		pool.Submit(wg.Done)
	}
	wg.Wait()
}
