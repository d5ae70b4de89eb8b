// Package stats computes per-cluster first and second order statistics of a
// lαβ buffer.
package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"colorxfer/cluster"
	"colorxfer/lab"
)

var ErrDimensionMismatch = errors.New("buffer and label map dimensions differ")

// ClusterStats describes the pixels of one cluster. Mean and StdDev are zero
// when Count is zero.
type ClusterStats struct {
	Count  int
	Mean   lab.Lab
	StdDev lab.Lab // population standard deviation
}

func (s ClusterStats) Empty() bool {
	return s.Count == 0
}

func (s ClusterStats) LogValue() slog.Value {
	if s.Empty() {
		return slog.GroupValue(slog.Int("count", 0))
	}
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Any("mean", [3]float64(s.Mean)),
		slog.Any("stddev", [3]float64(s.StdDev)),
	)
}

// Compute returns one ClusterStats per label of labels. The standard
// deviation is the population one (divided by n), so a single-pixel or
// uniform cluster has zero spread.
func Compute(buf *lab.Buffer, labels *cluster.LabelMap) ([]ClusterStats, error) {
	if buf == nil || labels == nil {
		return nil, fmt.Errorf("%w: missing input", ErrDimensionMismatch)
	}
	if buf.Rows != labels.Rows || buf.Cols != labels.Cols || len(buf.Data) != len(labels.Labels) {
		return nil, fmt.Errorf("%w: buffer %dx%d, labels %dx%d", ErrDimensionMismatch,
			buf.Rows, buf.Cols, labels.Rows, labels.Cols)
	}
	if err := labels.Validate(); err != nil {
		return nil, err
	}

	counts := labels.Counts()
	samples := make([][3][]float64, labels.K)
	for c, n := range counts {
		for ch := range samples[c] {
			samples[c][ch] = make([]float64, 0, n)
		}
	}
	for i, v := range buf.Data {
		c := labels.Labels[i]
		for ch := range v {
			samples[c][ch] = append(samples[c][ch], v[ch])
		}
	}

	res := make([]ClusterStats, labels.K)
	for c := range res {
		res[c].Count = counts[c]
		if counts[c] == 0 {
			continue
		}
		for ch := range samples[c] {
			mean, std := stat.PopMeanStdDev(samples[c][ch], nil)
			// rounding can push the variance of a constant sample a hair
			// below zero
			if math.IsNaN(std) {
				std = 0
			}
			res[c].Mean[ch] = mean
			res[c].StdDev[ch] = std
		}
	}
	return res, nil
}
