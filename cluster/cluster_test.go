package cluster

import (
	"errors"
	"slices"
	"testing"

	"colorxfer/lab"
)

// twoTone fills the left half of the image with one color and the right
// half with another.
func twoTone(rows, cols int) *lab.Image {
	img := lab.NewImage(rows, cols, lab.BGR)
	for y := range rows {
		for x := range cols {
			if x < cols/2 {
				img.Set(y, x, lab.BGR.Pack(220, 30, 40))
			} else {
				img.Set(y, x, lab.BGR.Pack(20, 40, 200))
			}
		}
	}
	return img
}

func noisy(rows, cols int) *lab.Image {
	img := lab.NewImage(rows, cols, lab.RGB)
	for i := range img.Pix {
		img.Pix[i] = uint8((i*7919 + i*i*31) % 256)
	}
	return img
}

func checkPartition(t *testing.T, img *lab.Image, labels *LabelMap, k int) {
	t.Helper()
	if labels.Rows != img.Rows || labels.Cols != img.Cols || labels.K != k {
		t.Fatalf("label map %dx%d k=%d, want %dx%d k=%d", labels.Rows, labels.Cols, labels.K, img.Rows, img.Cols, k)
	}
	if err := labels.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	total := 0
	for _, n := range labels.Counts() {
		total += n
	}
	if total != img.Rows*img.Cols {
		t.Errorf("counts sum to %d, want %d", total, img.Rows*img.Cols)
	}
}

func TestKMeansPartitionCompleteness(t *testing.T) {
	img := noisy(17, 23)
	for k := 1; k <= 8; k++ {
		labels, err := KMeans{Seed: 7}.Cluster(img, k)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		checkPartition(t, img, labels, k)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	img := noisy(20, 20)
	a, err := KMeans{Seed: 42}.Cluster(img, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := KMeans{Seed: 42}.Cluster(img, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Labels, b.Labels) {
		t.Error("same seed produced different labels")
	}
}

func TestKMeansSeparatesColors(t *testing.T) {
	img := twoTone(6, 10)
	labels, err := KMeans{Seed: 1}.Cluster(img, 2)
	if err != nil {
		t.Fatal(err)
	}

	left, right := labels.At(0, 0), labels.At(0, 9)
	if left == right {
		t.Fatalf("both halves got label %d", left)
	}
	for y := range img.Rows {
		for x := range img.Cols {
			want := right
			if x < img.Cols/2 {
				want = left
			}
			if got := labels.At(y, x); got != want {
				t.Errorf("At(%d,%d) = %d, want %d", y, x, got, want)
			}
		}
	}
}

func TestKMeansMoreClustersThanColors(t *testing.T) {
	img := lab.NewImage(3, 3, lab.RGB)
	img.Fill(10, 200, 30)

	labels, err := KMeans{Seed: 3}.Cluster(img, 5)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, img, labels, 5)

	empty := 0
	for _, n := range labels.Counts() {
		if n == 0 {
			empty++
		}
	}
	if empty != 4 {
		t.Errorf("uniform image left %d empty clusters, want 4", empty)
	}
}

func TestClusterRejectsBadInput(t *testing.T) {
	for _, c := range []Clusterer{KMeans{}, Muesli{}} {
		if _, err := c.Cluster(twoTone(2, 2), 0); !errors.Is(err, ErrInvalidK) {
			t.Errorf("%T k=0: error = %v, want ErrInvalidK", c, err)
		}
		bad := &lab.Image{Rows: 1, Cols: 1, Channels: 1, Pix: []uint8{1}, Order: lab.RGB}
		if _, err := c.Cluster(bad, 2); !errors.Is(err, lab.ErrChannels) {
			t.Errorf("%T one channel: error = %v, want ErrChannels", c, err)
		}
	}
}

func TestMuesliPartitionCompleteness(t *testing.T) {
	img := twoTone(8, 8)
	labels, err := Muesli{}.Cluster(img, 2)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, img, labels, 2)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		want    Clusterer
		wantErr bool
	}{
		{"", KMeans{Iterations: 5, Seed: 9}, false},
		{"kmeans", KMeans{Iterations: 5, Seed: 9}, false},
		{"muesli", Muesli{}, false},
		{"dbscan", nil, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.name, 9, 5)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestGray(t *testing.T) {
	labels := &LabelMap{Rows: 1, Cols: 3, K: 3, Labels: []int{0, 1, 2}}
	g := labels.Gray()
	if got := []uint8{g.GrayAt(0, 0).Y, g.GrayAt(1, 0).Y, g.GrayAt(2, 0).Y}; !slices.Equal(got, []uint8{0, 127, 255}) {
		t.Errorf("Gray() = %v, want [0 127 255]", got)
	}

	single := &LabelMap{Rows: 1, Cols: 2, K: 1, Labels: []int{0, 0}}
	if y := single.Gray().GrayAt(1, 0).Y; y != 0 {
		t.Errorf("single cluster renders %d, want 0", y)
	}
}

func TestColorize(t *testing.T) {
	labels := &LabelMap{Rows: 2, Cols: 1, K: 4, Labels: []int{3, 1}}
	img := labels.Colorize()
	if len(img.Palette) != 4 {
		t.Fatalf("palette size = %d, want 4", len(img.Palette))
	}
	if img.ColorIndexAt(0, 0) != 3 || img.ColorIndexAt(0, 1) != 1 {
		t.Errorf("indices = %d, %d", img.ColorIndexAt(0, 0), img.ColorIndexAt(0, 1))
	}
	for i := range img.Palette {
		for j := i + 1; j < len(img.Palette); j++ {
			if img.Palette[i] == img.Palette[j] {
				t.Errorf("palette colors %d and %d are identical", i, j)
			}
		}
	}
}
