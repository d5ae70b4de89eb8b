package stats

import (
	"errors"
	"math"
	"testing"

	"colorxfer/cluster"
	"colorxfer/lab"
)

func TestUniformImageHasZeroSpread(t *testing.T) {
	img := lab.NewImage(5, 4, lab.BGR)
	img.Fill(90, 160, 30)
	conv, _ := lab.NewConverter(lab.BGR)
	buf, err := conv.Forward(img, 2)
	if err != nil {
		t.Fatal(err)
	}

	for k := 1; k <= 3; k++ {
		labels, err := cluster.KMeans{Seed: 11}.Cluster(img, k)
		if err != nil {
			t.Fatal(err)
		}
		st, err := Compute(buf, labels)
		if err != nil {
			t.Fatal(err)
		}
		if len(st) != k {
			t.Fatalf("got %d stats, want %d", len(st), k)
		}

		want := lab.RGBToLab(90, 160, 30)
		for c, s := range st {
			if s.Empty() {
				continue
			}
			for _, ch := range lab.Channels {
				if s.StdDev[ch] > 1e-9 || math.IsNaN(s.StdDev[ch]) {
					t.Errorf("k=%d cluster %d %s stddev = %v, want 0", k, c, ch, s.StdDev[ch])
				}
				if math.Abs(s.Mean[ch]-want[ch]) > 1e-9 {
					t.Errorf("k=%d cluster %d %s mean = %v, want %v", k, c, ch, s.Mean[ch], want[ch])
				}
			}
		}
	}
}

func TestPopulationStatistics(t *testing.T) {
	buf := lab.NewBuffer(1, 5)
	buf.Data = []lab.Lab{{1, 0, 10}, {3, 0, 10}, {7, 7, 7}, {5, 2, -1}, {100, 100, 100}}
	labels := &cluster.LabelMap{Rows: 1, Cols: 5, K: 3, Labels: []int{0, 0, 1, 0, 1}}

	st, err := Compute(buf, labels)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		cluster   int
		count     int
		mean, std lab.Lab
	}{
		// channel l of cluster 0: 1, 3, 5 -> mean 3, population variance 8/3
		{0, 3, lab.Lab{3, 2.0 / 3, 19.0 / 3}, lab.Lab{math.Sqrt(8.0 / 3), math.Sqrt(8.0 / 9), math.Sqrt(242.0 / 9)}},
		{1, 2, lab.Lab{53.5, 53.5, 53.5}, lab.Lab{46.5, 46.5, 46.5}},
		{2, 0, lab.Lab{}, lab.Lab{}},
	}

	for _, tt := range tests {
		s := st[tt.cluster]
		if s.Count != tt.count {
			t.Errorf("cluster %d count = %d, want %d", tt.cluster, s.Count, tt.count)
		}
		for _, ch := range lab.Channels {
			if math.Abs(s.Mean[ch]-tt.mean[ch]) > 1e-9 {
				t.Errorf("cluster %d %s mean = %v, want %v", tt.cluster, ch, s.Mean[ch], tt.mean[ch])
			}
			if math.Abs(s.StdDev[ch]-tt.std[ch]) > 1e-9 {
				t.Errorf("cluster %d %s stddev = %v, want %v", tt.cluster, ch, s.StdDev[ch], tt.std[ch])
			}
		}
	}
	if !st[2].Empty() {
		t.Error("cluster 2 should be empty")
	}
}

func TestComputeRejectsMismatch(t *testing.T) {
	buf := lab.NewBuffer(2, 3)
	labels := cluster.NewLabelMap(3, 2, 2)
	if _, err := Compute(buf, labels); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}

	if _, err := Compute(buf, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("nil labels: error = %v, want ErrDimensionMismatch", err)
	}

	bad := cluster.NewLabelMap(2, 3, 2)
	bad.Labels[4] = 2
	if _, err := Compute(buf, bad); err == nil {
		t.Error("out of range label accepted")
	}
}
