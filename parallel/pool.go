package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool feeds submitted funcs to a fixed set of goroutines. With a single
// worker everything runs inline on the caller's goroutine.
type Pool struct {
	wg     sync.WaitGroup
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

// Workers resolves a requested worker count, non-positive meaning GOMAXPROCS.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

func Start(numWorkers int) *Pool {
	numWorkers = Workers(numWorkers)

	pool := &Pool{
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Rows calls fn once for every row in [0, rows), splitting the range into
// contiguous bands handed to at most workers goroutines. It returns when all
// rows are done. fn must only touch state owned by its row.
func Rows(workers, rows int, fn func(y int)) {
	if rows <= 0 {
		return
	}

	workers = min(Workers(workers), rows)
	band := (rows + workers - 1) / workers

	pool := Start(workers)
	for lo := 0; lo < rows; lo += band {
		hi := min(lo+band, rows)
		pool.Do(func() {
			for y := lo; y < hi; y++ {
				fn(y)
			}
		})
	}
	pool.Wait(true)
}
