package worker

import (
	"sync"
	"sync/atomic"
)

const defaultQueueSize = 64

// WorkerPool manages a pool of workers to process tasks
type WorkerPool struct {
	workers  []*Worker
	next     atomic.Uint64
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewWorkerPool creates a new WorkerPool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	pool := &WorkerPool{
		workers: make([]*Worker, numWorkers),
	}

	for i := 0; i < numWorkers; i++ {
		worker := NewWorker(defaultQueueSize)
		worker.Start()
		pool.workers[i] = worker
	}

	return pool
}

// Stop stops all workers in the pool, running queued tasks first
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		for _, worker := range p.workers {
			worker.Stop()
		}
	})
}

// Submit hands a task to the next worker in round-robin order.
// It reports false when the pool has been stopped.
func (p *WorkerPool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	idx := p.next.Add(1) % uint64(len(p.workers))
	p.workers[idx].Submit(task)
	return true
}
