package cluster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// LabelMap assigns every pixel of an image to one of K clusters.
type LabelMap struct {
	Rows   int
	Cols   int
	K      int
	Labels []int // row-major, len = Rows*Cols, values in [0, K)
}

func NewLabelMap(rows, cols, k int) *LabelMap {
	return &LabelMap{
		Rows:   rows,
		Cols:   cols,
		K:      k,
		Labels: make([]int, rows*cols),
	}
}

func (m *LabelMap) At(y, x int) int {
	return m.Labels[y*m.Cols+x]
}

// Counts returns the number of pixels carrying each label.
func (m *LabelMap) Counts() []int {
	counts := make([]int, m.K)
	for _, l := range m.Labels {
		if l >= 0 && l < m.K {
			counts[l]++
		}
	}
	return counts
}

func (m *LabelMap) Validate() error {
	if m.K <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidK, m.K)
	}
	if len(m.Labels) != m.Rows*m.Cols {
		return fmt.Errorf("label map %dx%d holds %d labels", m.Rows, m.Cols, len(m.Labels))
	}
	for i, l := range m.Labels {
		if l < 0 || l >= m.K {
			return fmt.Errorf("pixel %d has label %d outside [0, %d)", i, l, m.K)
		}
	}
	return nil
}

// Gray renders labels scaled into [0, 255]. A single cluster renders black.
func (m *LabelMap) Gray() *image.Gray {
	dest := image.NewGray(image.Rect(0, 0, m.Cols, m.Rows))
	if m.K < 2 {
		return dest
	}
	for y := range m.Rows {
		row := dest.Pix[y*dest.Stride:]
		for x := range m.Cols {
			row[x] = uint8(m.At(y, x) * 255 / (m.K - 1))
		}
	}
	return dest
}

// Palette returns K visually distinct colors, evenly spaced in HCL hue.
func Palette(k int) color.Palette {
	pal := make(color.Palette, k)
	for i := range pal {
		c := colorful.Hcl(360*float64(i)/float64(max(k, 1)), 0.6, 0.65).Clamped()
		r, g, b := c.RGB255()
		pal[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	return pal
}

// Colorize renders each label with its Palette color. K must not exceed 256.
func (m *LabelMap) Colorize() *image.Paletted {
	dest := image.NewPaletted(image.Rect(0, 0, m.Cols, m.Rows), Palette(m.K))
	for y := range m.Rows {
		row := dest.Pix[y*dest.Stride:]
		for x := range m.Cols {
			row[x] = uint8(m.At(y, x))
		}
	}
	return dest
}
