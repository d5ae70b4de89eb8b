package palette

import (
	"image/color"

	"colorxfer/lab"
	"colorxfer/stats"
)

// FromStats turns the lαβ mean of every cluster into a display color,
// keeping cluster indices as palette indices. Empty clusters map to
// transparent black.
func FromStats(st []stats.ClusterStats) color.Palette {
	conv, _ := lab.NewConverter(lab.RGB)

	pal := make(color.Palette, len(st))
	for i, s := range st {
		if s.Empty() {
			pal[i] = color.RGBA{}
			continue
		}
		px := conv.FromDecorrelated(s.Mean)
		pal[i] = color.RGBA{R: px[0], G: px[1], B: px[2], A: 0xFF}
	}
	return pal
}
