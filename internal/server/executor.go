package server

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// executor runs submitted jobs on a bounded goroutine pool. Jobs wait in a
// bounded queue while every worker is busy.
type executor struct {
	queue chan func()
	pool  *pool.Pool
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newExecutor(workers, queueSize int) *executor {
	e := &executor{
		queue: make(chan func(), queueSize),
		pool:  pool.New().WithMaxGoroutines(workers),
		done:  make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// dispatch hands queued jobs to the pool. pool.Go blocks while every
// worker is busy, which keeps the remaining jobs in the queue.
func (e *executor) dispatch() {
	defer close(e.done)
	for job := range e.queue {
		e.pool.Go(job)
	}
	e.pool.Wait()
}

// submit enqueues job without blocking.
func (e *executor) submit(job func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrShuttingDown
	}
	select {
	case e.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// close stops accepting jobs and waits for queued and running jobs.
func (e *executor) close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()
	<-e.done
}
