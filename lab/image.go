package lab

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

var (
	ErrChannels   = errors.New("image must have exactly 3 channels")
	ErrDimensions = errors.New("invalid image dimensions")
)

type Image struct {
	Rows     int
	Cols     int
	Channels int
	// Pix holds the pixels row-major. The pixel at (y, x) starts at
	// Pix[(y*Cols + x)*Channels].
	Pix []uint8
	// Order describes the channel layout of each pixel.
	Order ChannelOrder
}

func NewImage(rows, cols int, order ChannelOrder) *Image {
	return &Image{
		Rows:     rows,
		Cols:     cols,
		Channels: 3,
		Pix:      make([]uint8, rows*cols*3),
		Order:    order,
	}
}

func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrDimensions)
	}
	if m.Channels != 3 {
		return fmt.Errorf("%w: got %d", ErrChannels, m.Channels)
	}
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, m.Rows, m.Cols)
	}
	if len(m.Pix) != m.Rows*m.Cols*3 {
		return fmt.Errorf("%w: %dx%d needs %d bytes, have %d", ErrDimensions, m.Rows, m.Cols,
			m.Rows*m.Cols*3, len(m.Pix))
	}
	return m.Order.Validate()
}

func (m *Image) At(y, x int) [3]uint8 {
	i := (y*m.Cols + x) * 3
	return [3]uint8(m.Pix[i : i+3])
}

func (m *Image) Set(y, x int, px [3]uint8) {
	i := (y*m.Cols + x) * 3
	copy(m.Pix[i:i+3], px[:])
}

// Fill sets every pixel to the given red, green and blue values.
func (m *Image) Fill(r, g, b uint8) {
	px := m.Order.Pack(r, g, b)
	for i := 0; i < len(m.Pix); i += 3 {
		copy(m.Pix[i:i+3], px[:])
	}
}

// FromImage flattens any decoded image into a 3-channel buffer laid out in
// the given order. Alpha is dropped after compositing over black.
func FromImage(src image.Image, order ChannelOrder) *Image {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, src, b.Min, draw.Src)
	}

	m := NewImage(b.Dy(), b.Dx(), order)
	for y := range m.Rows {
		row := rgba.Pix[y*rgba.Stride:]
		for x := range m.Cols {
			p := row[x*4:]
			m.Set(y, x, order.Pack(p[0], p[1], p[2]))
		}
	}
	return m
}

// RGBA renders the buffer as an opaque image.RGBA for encoders.
func (m *Image) RGBA() *image.RGBA {
	dest := image.NewRGBA(image.Rect(0, 0, m.Cols, m.Rows))
	for y := range m.Rows {
		row := dest.Pix[y*dest.Stride:]
		for x := range m.Cols {
			r, g, b := m.Order.Unpack(m.At(y, x))
			p := row[x*4:]
			p[0], p[1], p[2], p[3] = r, g, b, 0xFF
		}
	}
	return dest
}
