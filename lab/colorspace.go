// based on:
// Reinhard, Ashikhmin, Gooch, Shirley - Color Transfer between Images (2001)

package lab

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Channel indexes a component of a Lab triple.
type Channel int

const (
	Lambda Channel = iota // luminance-like
	Alpha                 // yellow/blue chroma
	Beta                  // red/green chroma
)

var Channels = [...]Channel{Lambda, Alpha, Beta}

func (c Channel) String() string {
	switch c {
	case Lambda:
		return "l"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Lab is a point in the decorrelated logarithmic lαβ space.
type Lab [3]float64

func (v Lab) L() float64     { return v[Lambda] }
func (v Lab) Alpha() float64 { return v[Alpha] }
func (v Lab) Beta() float64  { return v[Beta] }

// Distance is the euclidean distance between two lαβ points.
func (v Lab) Distance(w Lab) float64 {
	dl := v[Lambda] - w[Lambda]
	da := v[Alpha] - w[Alpha]
	db := v[Beta] - w[Beta]
	return math.Sqrt(dl*dl + da*da + db*db)
}

var (
	invSqrt2 = 1 / math.Sqrt(2)
	invSqrt3 = 1 / math.Sqrt(3)
	invSqrt6 = 1 / math.Sqrt(6)

	rgbToLMS = mat.NewDense(3, 3, []float64{
		0.3811, 0.5783, 0.0402,
		0.1967, 0.7244, 0.0782,
		0.0241, 0.1288, 0.8444,
	})
	logLMSToLab = mat.NewDense(3, 3, []float64{
		invSqrt3, invSqrt3, invSqrt3,
		invSqrt6, invSqrt6, -2 * invSqrt6,
		invSqrt2, -invSqrt2, 0,
	})

	lmsToRGB    = mustInverse(rgbToLMS)
	labToLogLMS = mustInverse(logLMSToLab)

	fwdLMS = toArray(rgbToLMS)
	fwdLab = toArray(logLMSToLab)
	invLab = toArray(labToLogLMS)
	invLMS = toArray(lmsToRGB)
)

func mustInverse(m *mat.Dense) *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		panic(fmt.Sprintf("lab: constant matrix is not invertible: %v", err))
	}
	return &inv
}

func toArray(m *mat.Dense) [3][3]float64 {
	var a [3][3]float64
	for i := range 3 {
		for j := range 3 {
			a[i][j] = m.At(i, j)
		}
	}
	return a
}

func mul(m *[3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// RGBToLab maps red, green, blue in [0, 255] to lαβ: RGB to LMS, ln(1+x)
// compression, then decorrelation.
func RGBToLab(r, g, b float64) Lab {
	lms := mul(&fwdLMS, [3]float64{r, g, b})
	for i, x := range lms {
		lms[i] = math.Log1p(max(x, 0))
	}
	return Lab(mul(&fwdLab, lms))
}

// LabToRGB is the exact inverse of RGBToLab. The result is not clamped.
func LabToRGB(v Lab) (r, g, b float64) {
	lms := mul(&invLab, v)
	for i, x := range lms {
		lms[i] = math.Expm1(x)
	}
	rgb := mul(&invLMS, lms)
	return rgb[0], rgb[1], rgb[2]
}

// Converter maps stored pixels of a fixed channel order to and from lαβ.
type Converter struct {
	order ChannelOrder
}

func NewConverter(order ChannelOrder) (Converter, error) {
	if err := order.Validate(); err != nil {
		return Converter{}, err
	}
	return Converter{order: order}, nil
}

func (c Converter) Order() ChannelOrder {
	return c.order
}

func (c Converter) ToDecorrelated(px [3]uint8) Lab {
	r, g, b := c.order.Unpack(px)
	return RGBToLab(float64(r), float64(g), float64(b))
}

func (c Converter) FromDecorrelated(v Lab) [3]uint8 {
	px, _ := c.fromDecorrelated(v)
	return px
}

// fromDecorrelated also reports whether any channel fell outside [0, 255].
func (c Converter) fromDecorrelated(v Lab) ([3]uint8, bool) {
	r, g, b := LabToRGB(v)
	qr, cr := quantize(r)
	qg, cg := quantize(g)
	qb, cb := quantize(b)
	return c.order.Pack(qr, qg, qb), cr || cg || cb
}

func quantize(x float64) (uint8, bool) {
	x = math.Round(x)
	switch {
	case math.IsNaN(x) || x < 0:
		return 0, true
	case x > 255:
		return 255, true
	}
	return uint8(x), false
}
