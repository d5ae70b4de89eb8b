package transfer

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"colorxfer/stats"
)

// Matcher pairs every source cluster with a reference cluster. The result
// holds, per source index, the chosen reference index.
type Matcher interface {
	Match(src, ref []stats.ClusterStats) []int
}

var MatcherNames = []string{"index", "greedy", "optimal"}

func ParseMatcher(name string) (Matcher, error) {
	switch name {
	case "", "index":
		return IndexMatcher{}, nil
	case "greedy":
		return GreedyMatcher{}, nil
	case "optimal":
		return OptimalMatcher{}, nil
	}
	return nil, fmt.Errorf("unknown matcher %q", name)
}

// IndexMatcher pairs source cluster i with reference cluster i. The two
// clusterings are independent, so equal indices need not mean similar colors.
type IndexMatcher struct{}

func (IndexMatcher) Match(src, ref []stats.ClusterStats) []int {
	m := make([]int, len(src))
	for i := range m {
		m[i] = i
	}
	return m
}

// pairing cost for anything involving an empty cluster; finite so sums over
// a permutation still order correctly
const emptyCost = math.MaxFloat32

func centroidCost(a, b stats.ClusterStats) float64 {
	if a.Empty() || b.Empty() {
		return emptyCost
	}
	return a.Mean.Distance(b.Mean)
}

// GreedyMatcher repeatedly pairs the closest remaining source and reference
// centroids in lαβ.
type GreedyMatcher struct{}

func (GreedyMatcher) Match(src, ref []stats.ClusterStats) []int {
	type pair struct {
		i, j int
		cost float64
	}

	pairs := make([]pair, 0, len(src)*len(ref))
	for i := range src {
		for j := range ref {
			pairs = append(pairs, pair{i, j, centroidCost(src[i], ref[j])})
		}
	}
	slices.SortStableFunc(pairs, func(a, b pair) int {
		return cmp.Compare(a.cost, b.cost)
	})

	m := make([]int, len(src))
	for i := range m {
		m[i] = -1
	}
	used := make([]bool, len(ref))
	for _, p := range pairs {
		if m[p.i] >= 0 || used[p.j] {
			continue
		}
		m[p.i] = p.j
		used[p.j] = true
	}
	return m
}

// maxOptimalK bounds the exhaustive search, 8! permutations.
const maxOptimalK = 8

// OptimalMatcher picks the one-to-one pairing with the lowest total centroid
// distance. Above eight clusters it falls back to GreedyMatcher.
type OptimalMatcher struct{}

func (OptimalMatcher) Match(src, ref []stats.ClusterStats) []int {
	n := len(src)
	if n != len(ref) || n > maxOptimalK {
		return GreedyMatcher{}.Match(src, ref)
	}

	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, n)
		for j := range cost[i] {
			cost[i][j] = centroidCost(src[i], ref[j])
		}
	}

	best := make([]int, n)
	bestCost := math.Inf(1)
	perm := make([]int, n)
	used := make([]bool, n)

	var search func(i int, acc float64)
	search = func(i int, acc float64) {
		if acc >= bestCost {
			return
		}
		if i == n {
			bestCost = acc
			copy(best, perm)
			return
		}
		for j := range n {
			if used[j] {
				continue
			}
			used[j], perm[i] = true, j
			search(i+1, acc+cost[i][j])
			used[j] = false
		}
	}
	search(0, 0)

	return best
}
