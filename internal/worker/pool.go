// Package worker provides a bounded pool for offloading blocking calls.
package worker

import "sync"

// Pool runs submitted functions on a fixed number of goroutines.
//
// It exists to keep blocking network calls (catalog searches, fan-out
// lookups) off the per-command goroutines' critical path while bounding
// how many run at once.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewPool starts a pool with size worker goroutines. size must be >= 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		tasks: make(chan func()),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for fn := range p.tasks {
				fn()
			}
		}()
	}
	return p
}

// Submit schedules fn on the pool, blocking until a worker accepts it.
func (p *Pool) Submit(fn func()) {
	p.tasks <- fn
}

// Do runs fn on the pool and waits for it to finish.
func (p *Pool) Do(fn func()) {
	done := make(chan struct{})
	p.Submit(func() {
		defer close(done)
		fn()
	})
	<-done
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
