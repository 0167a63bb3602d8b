package parallel

import (
	"runtime"
	"sync"
)

// Pool runs batches of tasks on a fixed set of worker goroutines. A pool of
// one worker runs every task inline on the caller's goroutine.
type Pool struct {
	wg    sync.WaitGroup
	work  chan func()
	size  int
	close func()
}

// Start creates a pool. numWorkers < 1 means one worker per GOMAXPROCS.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		size:  numWorkers,
		close: func() {},
	}

	if numWorkers > 1 {
		pool.work = make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range pool.work {
					f()
				}
			})
		}

		pool.close = sync.OnceFunc(func() {
			close(pool.work)
			pool.wg.Wait()
		})
	}

	return pool
}

// Size returns the number of workers. A nil pool has one.
func (p *Pool) Size() int {
	if p == nil {
		return 1
	}
	return p.size
}

// Run executes tasks and returns once all of them have finished. It must not
// be called from inside a task or after Close. A nil pool runs inline.
func (p *Pool) Run(tasks ...func()) {
	if p == nil || p.work == nil || len(tasks) < 2 {
		for _, f := range tasks {
			f()
		}
		return
	}

	var batch sync.WaitGroup
	for _, f := range tasks {
		batch.Add(1)
		p.work <- func() {
			defer batch.Done()
			f()
		}
	}
	batch.Wait()
}

// Close stops the workers after queued tasks drain.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.close()
}
