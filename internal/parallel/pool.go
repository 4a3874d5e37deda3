package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines that runs render passes.
//
// Each worker owns a queue. Work is distributed round-robin and idle workers
// steal from other queues, which balances tiles that are slower than others
// (for example tiles covered by many triangles).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool

	// mu is held for reading while Run enqueues and for writing while
	// Close stops the pool, so no item lands in a drained queue.
	mu sync.RWMutex
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

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

	own := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
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

// Run calls fn(i) for every i in [0, n) and waits for all calls to return.
//
// Items not yet started when ctx is cancelled are skipped, and Run returns
// ctx.Err(). A nil or closed pool runs every item on the calling goroutine.
// fn must not call Run on the same pool.
func (p *WorkerPool) Run(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	if p == nil {
		return runInline(ctx, n, fn)
	}
	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return runInline(ctx, n, fn)
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		p.workQueues[i%p.workers] <- func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			fn(i)
		}
	}
	p.mu.RUnlock()
	wg.Wait()
	return ctx.Err()
}

func runInline(ctx context.Context, n int, fn func(i int)) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(i)
	}
	return nil
}

// Close stops the workers after the queued work has run. Run calls that
// start afterwards execute inline.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
