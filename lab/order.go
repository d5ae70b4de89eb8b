package lab

import (
	"errors"
	"fmt"
)

var ErrChannelOrder = errors.New("invalid channel order")

// ChannelOrder tells where red, green and blue live inside a stored pixel.
type ChannelOrder struct {
	R int // index of the red channel
	G int // index of the green channel
	B int // index of the blue channel
}

var (
	RGB = ChannelOrder{R: 0, G: 1, B: 2}
	BGR = ChannelOrder{R: 2, G: 1, B: 0}
)

func (o ChannelOrder) Validate() error {
	var seen [3]bool
	for _, i := range [...]int{o.R, o.G, o.B} {
		if i < 0 || i > 2 || seen[i] {
			return fmt.Errorf("%w: %d/%d/%d", ErrChannelOrder, o.R, o.G, o.B)
		}
		seen[i] = true
	}
	return nil
}

// Unpack returns the stored pixel's channels in red, green, blue order.
func (o ChannelOrder) Unpack(px [3]uint8) (r, g, b uint8) {
	return px[o.R], px[o.G], px[o.B]
}

// Pack stores red, green, blue into a pixel laid out in this order.
func (o ChannelOrder) Pack(r, g, b uint8) [3]uint8 {
	var px [3]uint8
	px[o.R], px[o.G], px[o.B] = r, g, b
	return px
}

func (o ChannelOrder) String() string {
	if o.Validate() != nil {
		return fmt.Sprintf("invalid(%d,%d,%d)", o.R, o.G, o.B)
	}
	var name [3]byte
	name[o.R], name[o.G], name[o.B] = 'R', 'G', 'B'
	return string(name[:])
}
