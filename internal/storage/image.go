package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxImageDimension = 800
	jpegQuality       = 85
)

// ProcessImage decodes an uploaded image, scales it down to fit within
// 800x800 preserving aspect ratio, and re-encodes it as JPEG. Images already
// within bounds are still re-encoded so stored files share one format.
func ProcessImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storage: decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("storage: empty image")
	}

	targetWidth, targetHeight := fitWithin(width, height, maxImageDimension)
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("storage: encode image: %w", err)
	}
	return out.Bytes(), nil
}

// fitWithin scales (width, height) down so neither side exceeds limit.
// Smaller images keep their size.
func fitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}

	if width >= height {
		scaled := height * limit / width
		if scaled < 1 {
			scaled = 1
		}
		return limit, scaled
	}

	scaled := width * limit / height
	if scaled < 1 {
		scaled = 1
	}
	return scaled, limit
}
