package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRowsVisitsEveryRowOnce(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		rows    int
	}{
		{"inline", 1, 7},
		{"more workers than rows", 16, 3},
		{"uneven bands", 4, 10},
		{"gomaxprocs", 0, 33},
		{"no rows", 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]atomic.Int32, tt.rows)
			Rows(tt.workers, tt.rows, func(y int) {
				hits[y].Add(1)
			})
			for y := range hits {
				if got := hits[y].Load(); got != 1 {
					t.Errorf("row %d visited %d times, want 1", y, got)
				}
			}
		})
	}
}

func TestPoolWaitRunsAllWork(t *testing.T) {
	pool := Start(3)
	var n atomic.Int64
	for range 100 {
		pool.Do(func() { n.Add(1) })
	}
	pool.Wait(true)

	if got := n.Load(); got != 100 {
		t.Errorf("ran %d funcs, want 100", got)
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(5); got != 5 {
		t.Errorf("Workers(5) = %d", got)
	}
	if got := Workers(0); got < 1 {
		t.Errorf("Workers(0) = %d, want >= 1", got)
	}
}
