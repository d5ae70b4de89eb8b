// Package cluster partitions the pixels of an image into K color clusters.
package cluster

import (
	"errors"
	"fmt"

	"colorxfer/lab"
)

var ErrInvalidK = errors.New("cluster count must be positive")

// Clusterer assigns every pixel of img, taken as a raw channel triple, to
// one of k clusters. Some labels may end up with no pixels at all.
type Clusterer interface {
	Cluster(img *lab.Image, k int) (*LabelMap, error)
}

var Names = []string{"kmeans", "muesli"}

// Parse returns the clusterer registered under name.
func Parse(name string, seed uint64, iterations int) (Clusterer, error) {
	switch name {
	case "", "kmeans":
		return KMeans{Iterations: iterations, Seed: seed}, nil
	case "muesli":
		return Muesli{}, nil
	}
	return nil, fmt.Errorf("unknown clusterer %q", name)
}
