package tensor

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the element count below which kernels stay on the
// calling goroutine. Small tensors lose more to scheduling than they gain
// from fan-out.
const parallelThreshold = 1 << 16

// parallelFor runs fn over [0, n) split into disjoint contiguous ranges,
// one per worker. Ranges never overlap and fn writes only inside its own
// range, so the result is bit-identical to the sequential loop; this is
// data-parallel fan-out within a single call, not shared mutable state.
func parallelFor(n int, fn func(lo, hi int)) {
	if n < parallelThreshold {
		fn(0, n)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()
}
