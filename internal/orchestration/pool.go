package orchestration

import (
	"sync"

	"github.com/panjf2000/ants/v2"
)

// defaultPoolSize bounds the number of steps dispatched concurrently when no
// explicit concurrency limit is configured.
const defaultPoolSize = 32

// stepPool wraps an ants.Pool to submit one goroutine per ready step while
// bounding total in-flight goroutines.
type stepPool struct {
	pool *ants.Pool
}

func newStepPool(size int) (*stepPool, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	p, err := ants.NewPool(size, ants.WithPreAlloc(false))
	if err != nil {
		return nil, err
	}
	return &stepPool{pool: p}, nil
}

func (sp *stepPool) Release() {
	sp.pool.Release()
}

// runAll submits one task per item to the pool and blocks until every task
// has run.
func (sp *stepPool) runAll(n int, fn func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		idx := i
		err := sp.pool.Submit(func() {
			defer wg.Done()
			fn(idx)
		})
		if err != nil {
			// Pool is closed or overloaded beyond its non-blocking capacity;
			// run inline so the batch still completes deterministically.
			wg.Done()
			fn(idx)
		}
	}
	wg.Wait()
}
