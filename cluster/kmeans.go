package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"colorxfer/lab"
)

const DefaultIterations = 10

// KMeans is a seeded Lloyd's k-means over raw pixel triples. The same seed,
// image and k always produce the same labels.
type KMeans struct {
	Iterations int    // maximum refinement passes, DefaultIterations if <= 0
	Seed       uint64 // seed for k-means++ centroid selection
}

var _ Clusterer = KMeans{}

func (km KMeans) Cluster(img *lab.Image, k int) (*LabelMap, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	points := make([][3]float64, img.Rows*img.Cols)
	for i := range points {
		p := img.Pix[i*3:]
		points[i] = [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15))
	centers := seedCenters(points, k, rng)

	labels := NewLabelMap(img.Rows, img.Cols, k)
	assign(points, centers, labels.Labels)

	iterations := km.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	for range iterations {
		recenter(points, centers, labels.Labels)
		if assign(points, centers, labels.Labels) == 0 {
			break
		}
	}

	return labels, nil
}

// seedCenters picks k initial centroids with k-means++: each next centroid
// is drawn with probability proportional to its squared distance from the
// closest centroid chosen so far.
func seedCenters(points [][3]float64, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	centers = append(centers, points[rng.IntN(len(points))])

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = sqDist(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := rng.IntN(len(points))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				if target -= d; target < 0 {
					next = i
					break
				}
			}
		}

		c := points[next]
		centers = append(centers, c)
		for i, p := range points {
			dist[i] = min(dist[i], sqDist(p, c))
		}
	}

	return centers
}

// assign labels every point with its nearest centroid, ties going to the
// lowest index, and returns how many labels changed.
func assign(points, centers [][3]float64, labels []int) int {
	changed := 0
	for i, p := range points {
		best, bestDist := 0, math.MaxFloat64
		for j, c := range centers {
			if d := sqDist(p, c); d < bestDist {
				best, bestDist = j, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed++
		}
	}
	return changed
}

// recenter moves each centroid to the mean of its members. Centroids without
// members stay where they are.
func recenter(points, centers [][3]float64, labels []int) {
	sums := make([][3]float64, len(centers))
	counts := make([]int, len(centers))
	for i, p := range points {
		l := labels[i]
		sums[l][0] += p[0]
		sums[l][1] += p[1]
		sums[l][2] += p[2]
		counts[l]++
	}

	for j := range centers {
		if counts[j] == 0 {
			continue
		}
		n := float64(counts[j])
		centers[j] = [3]float64{sums[j][0] / n, sums[j][1] / n, sums[j][2] / n}
	}
}

func sqDist(a, b [3]float64) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}
