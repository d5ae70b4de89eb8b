package cluster

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"colorxfer/lab"
)

// Muesli clusters with github.com/muesli/kmeans. It is not seedable, so two
// runs over the same image may disagree.
type Muesli struct {
	// DeltaThreshold stops iterating once fewer than this fraction of points
	// change cluster. Defaults to 0.01.
	DeltaThreshold float64
}

var _ Clusterer = Muesli{}

func (m Muesli) Cluster(img *lab.Image, k int) (*LabelMap, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	// muesli seeds centroids inside the unit cube, so feed it normalized
	// channels.
	obs := make(clusters.Observations, 0, img.Rows*img.Cols)
	for i := 0; i < len(img.Pix); i += 3 {
		p := img.Pix[i:]
		obs = append(obs, clusters.Coordinates{
			float64(p[0]) / 255,
			float64(p[1]) / 255,
			float64(p[2]) / 255,
		})
	}

	delta := m.DeltaThreshold
	if delta <= 0 || delta >= 1 {
		delta = 0.01
	}
	km, err := kmeans.NewWithOptions(delta, nil)
	if err != nil {
		return nil, fmt.Errorf("could not set up k-means: %w", err)
	}

	cc, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("could not partition %d pixels into %d clusters: %w", len(obs), k, err)
	}

	labels := NewLabelMap(img.Rows, img.Cols, k)
	for i, o := range obs {
		labels.Labels[i] = cc.Nearest(o)
	}
	return labels, nil
}
