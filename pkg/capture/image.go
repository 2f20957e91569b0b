package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Screenshot scaling limits. The model ingests images up to 2048 pixels
// on the long edge and 768 on the short edge.
const (
	maxLongEdge  = 2048
	maxShortEdge = 768
)

// scaledSize shrinks (width, height) to fit the edge limits while keeping
// the aspect ratio. Images already inside the limits keep their size.
func scaledSize(width, height int) (int, int) {
	aspect := float64(width) / float64(height)

	if aspect > 1 {
		newWidth := min(width, maxLongEdge)
		newHeight := int(float64(newWidth) / aspect)
		newHeight = min(newHeight, maxShortEdge)
		return int(float64(newHeight) * aspect), newHeight
	}

	newHeight := min(height, maxLongEdge)
	newWidth := int(float64(newHeight) * aspect)
	newWidth = min(newWidth, maxShortEdge)
	return newWidth, int(float64(newWidth) / aspect)
}

// FormatImage decodes a screenshot, flattens transparency onto white,
// scales it to the model's size limits, and writes it as JPEG.
func FormatImage(raw []byte, outputPath string) error {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	newWidth, newHeight := scaledSize(bounds.Dx(), bounds.Dy())
	scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), flat, bounds, xdraw.Over, nil)

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return jpeg.Encode(out, scaled, nil)
}
