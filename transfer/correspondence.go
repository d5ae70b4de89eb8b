package transfer

import (
	"fmt"

	"colorxfer/cluster"
	"colorxfer/lab"
	"colorxfer/parallel"
	"colorxfer/stats"
)

// Correspondence is the affine rule applied to the pixels of one source
// cluster: out = Scale*(v - SourceMean) + TargetMean, per channel.
type Correspondence struct {
	Source     int
	Target     int
	Scale      lab.Lab
	SourceMean lab.Lab
	TargetMean lab.Lab
}

func (c Correspondence) Apply(v lab.Lab) lab.Lab {
	var out lab.Lab
	for ch := range v {
		out[ch] = c.Scale[ch]*(v[ch]-c.SourceMean[ch]) + c.TargetMean[ch]
	}
	return out
}

// BuildCorrespondences derives the rule of every source cluster from its
// matched reference cluster. Empty clusters keep their pixels unchanged and
// channels whose source spread is below eps are shifted but not scaled; each
// such substitution is reported.
func BuildCorrespondences(src, ref []stats.ClusterStats, match []int, eps float64) ([]Correspondence, []Adjustment, error) {
	if len(match) != len(src) {
		return nil, nil, fmt.Errorf("%w: %d matches for %d clusters", ErrConfiguration, len(match), len(src))
	}

	var adj []Adjustment
	res := make([]Correspondence, len(src))
	for i, s := range src {
		t := match[i]
		if t < 0 || t >= len(ref) {
			return nil, nil, fmt.Errorf("%w: cluster %d matched to %d of %d", ErrConfiguration, i, t, len(ref))
		}
		r := ref[t]

		c := Correspondence{
			Source:     i,
			Target:     t,
			Scale:      lab.Lab{1, 1, 1},
			SourceMean: s.Mean,
			TargetMean: r.Mean,
		}
		if s.Empty() || r.Empty() {
			c.TargetMean = s.Mean
			adj = append(adj, Adjustment{Kind: DegenerateCluster, Cluster: i})
			res[i] = c
			continue
		}

		for _, ch := range lab.Channels {
			if s.StdDev[ch] < eps {
				adj = append(adj, Adjustment{Kind: NearZeroVariance, Cluster: i, Channel: ch})
				continue
			}
			c.Scale[ch] = r.StdDev[ch] / s.StdDev[ch]
		}
		res[i] = c
	}
	return res, adj, nil
}

// Recolor rewrites buf in place, moving every pixel through the rule of its
// own cluster.
func Recolor(buf *lab.Buffer, labels *cluster.LabelMap, rules []Correspondence, workers int) error {
	if buf.Rows != labels.Rows || buf.Cols != labels.Cols {
		return fmt.Errorf("%w: %w", ErrConfiguration, stats.ErrDimensionMismatch)
	}
	if len(rules) != labels.K {
		return fmt.Errorf("%w: %d rules for %d clusters", ErrConfiguration, len(rules), labels.K)
	}

	parallel.Rows(workers, buf.Rows, func(y int) {
		row := buf.Data[y*buf.Cols : (y+1)*buf.Cols]
		lrow := labels.Labels[y*labels.Cols : (y+1)*labels.Cols]
		for x, v := range row {
			row[x] = rules[lrow[x]].Apply(v)
		}
	})
	return nil
}
