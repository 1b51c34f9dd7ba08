package bvh

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Run fn for every index in [0, n) using up to workers goroutines. Each worker
// processes a contiguous chunk of indices. If workers <= 0, GOMAXPROCS
// workers are used. fn cannot fail: the group goroutines always return nil
// and Wait is only used to block until every chunk has been processed.
func parallelFor(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		from, to := start, start+chunk
		if to > n {
			to = n
		}
		g.Go(func() error {
			for i := from; i < to; i++ {
				fn(i)
			}
			return nil
		})
	}
	// Always nil; see above.
	_ = g.Wait()
}
