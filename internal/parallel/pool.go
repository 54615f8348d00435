// Package parallel provides the worker pool that executes background tile
// renders.
//
// The pool runs a fixed number of goroutines pulling from one shared FIFO
// queue. Submit never blocks, so it can be called from a paint path or
// while the caller holds its own lock. Admission control (which work may
// start and when) is the caller's business; the pool only executes.
//
// A panic in submitted work is recovered and logged; it never takes a
// worker down.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/pageview"
)

// WorkerPool is a pool of goroutines executing submitted work.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	mu    sync.Mutex
	cond  *sync.Cond
	queue []func()
	done  bool

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// active counts work items currently executing.
	active atomic.Int32
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.done {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// done and drained
			p.mu.Unlock()
			return
		}
		work := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(work)
	}
}

// run executes one work item, recovering from panics.
func (p *WorkerPool) run(work func()) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			pageview.Logger().Warn("parallel: recovered panic in worker", "panic", r)
		}
	}()
	work()
}

// Submit queues a single work item. It never blocks.
// Returns false if the pool is closed or fn is nil.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return false
	}
	p.queue = append(p.queue, fn)
	p.cond.Signal()
	return true
}

// Close stops accepting new work, waits for queued work to complete and
// stops all workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	p.mu.Lock()
	p.done = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// QueuedWork returns the number of work items waiting for a worker.
func (p *WorkerPool) QueuedWork() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ActiveWork returns the number of work items currently executing.
func (p *WorkerPool) ActiveWork() int {
	return int(p.active.Load())
}
