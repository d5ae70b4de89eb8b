package lab

import (
	"fmt"

	"colorxfer/parallel"
)

// Buffer holds one lαβ triple per pixel of the image it was derived from.
type Buffer struct {
	Rows int
	Cols int
	Data []Lab // row-major, len = Rows*Cols
}

func NewBuffer(rows, cols int) *Buffer {
	return &Buffer{
		Rows: rows,
		Cols: cols,
		Data: make([]Lab, rows*cols),
	}
}

func (b *Buffer) At(y, x int) Lab {
	return b.Data[y*b.Cols+x]
}

func (b *Buffer) Set(y, x int, v Lab) {
	b.Data[y*b.Cols+x] = v
}

// Forward converts every pixel of img to lαβ. Rows are spread over workers
// goroutines, non-positive meaning GOMAXPROCS.
func (c Converter) Forward(img *Image, workers int) (*Buffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.Order != c.order {
		return nil, fmt.Errorf("%w: image is %s, converter expects %s", ErrChannelOrder, img.Order, c.order)
	}

	buf := NewBuffer(img.Rows, img.Cols)
	parallel.Rows(workers, img.Rows, func(y int) {
		for x := range img.Cols {
			buf.Set(y, x, c.ToDecorrelated(img.At(y, x)))
		}
	})
	return buf, nil
}

// Inverse converts a buffer back to an 8-bit image in the converter's
// channel order. It also returns how many pixels had at least one channel
// clamped into [0, 255].
func (c Converter) Inverse(buf *Buffer, workers int) (*Image, int, error) {
	if buf == nil || buf.Rows <= 0 || buf.Cols <= 0 || len(buf.Data) != buf.Rows*buf.Cols {
		return nil, 0, fmt.Errorf("%w: malformed lab buffer", ErrDimensions)
	}

	img := NewImage(buf.Rows, buf.Cols, c.order)
	clamped := make([]int, buf.Rows)
	parallel.Rows(workers, buf.Rows, func(y int) {
		for x := range buf.Cols {
			px, clip := c.fromDecorrelated(buf.At(y, x))
			if clip {
				clamped[y]++
			}
			img.Set(y, x, px)
		}
	})

	var total int
	for _, n := range clamped {
		total += n
	}
	return img, total, nil
}
