package imgio

import (
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// Downscale shrinks img so that its longer side is at most maxSide pixels,
// keeping the aspect ratio. Smaller images and a non-positive maxSide return
// img untouched.
func Downscale(logger *slog.Logger, img image.Image, maxSide int) image.Image {
	srcBounds := img.Bounds()
	srcWidth := float64(srcBounds.Dx())
	srcHeight := float64(srcBounds.Dy())

	longest := max(srcWidth, srcHeight)
	if maxSide <= 0 || longest <= float64(maxSide) {
		return img
	}

	ratio := float64(maxSide) / longest
	destBounds := image.Rect(0, 0,
		max(1, int(math.Round(srcWidth*ratio))),
		max(1, int(math.Round(srcHeight*ratio))))

	logger.Info("downscaling", "width", destBounds.Dx(), "height", destBounds.Dy())
	dest := image.NewRGBA(destBounds)
	draw.CatmullRom.Scale(dest, destBounds, img, srcBounds, draw.Src, nil)
	return dest
}
