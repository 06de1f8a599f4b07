// Package parallel provides the worker pool used for parallel scene
// updates and large transitions.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines with per-worker queues. Idle
// workers steal from the other queues.
//
// Work submitted while the pool is closed, or while every queue is full,
// runs on the calling goroutine, so submitting from inside a work item
// cannot deadlock the pool.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup

	// mu orders queue sends against Close flipping running.
	mu      sync.RWMutex
	running atomic.Bool
}

// NewWorkerPool starts a pool of the given size. If workers is 0 or
// negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	mine := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(mine)
			return
		case work := <-mine:
			run(work)
		default:
			if stolen := p.steal(id); stolen != nil {
				run(stolen)
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(mine)
				return
			case work := <-mine:
				run(work)
			}
		}
	}
}

func run(work func()) {
	if work != nil {
		work()
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			run(work)
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll runs every work item and waits for all of them.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		p.enqueue(i%p.workers, func() {
			defer wg.Done()
			fn()
		})
	}
	wg.Wait()
}

// Submit queues fn on the least loaded worker without waiting for it.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil {
		return
	}
	minIdx, minLen := 0, len(p.workQueues[0])
	for i := 1; i < p.workers; i++ {
		if n := len(p.workQueues[i]); n < minLen {
			minIdx, minLen = i, n
		}
	}
	p.enqueue(minIdx, fn)
}

// enqueue hands fn to worker id, running it inline if the pool is closed
// or the queue is full.
func (p *WorkerPool) enqueue(id int, fn func()) {
	p.mu.RLock()
	if p.running.Load() {
		select {
		case p.workQueues[id] <- fn:
			p.mu.RUnlock()
			return
		default:
		}
	}
	p.mu.RUnlock()
	fn()
}

// Close stops the workers after they drain their queues. Work queued before
// Close always runs; work submitted after it runs on the caller. Close is
// safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	close(p.done)
	p.wg.Wait()
	for _, q := range p.workQueues {
		p.drainQueue(q)
	}
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
