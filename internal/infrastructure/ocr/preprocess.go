package ocr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
)

// maxUploadDimension caps the longer image side before upload. Receipt
// photos from phones are much larger than the sidecar needs.
const maxUploadDimension = 1600

// Preprocess normalizes a receipt photo for recognition: grayscale,
// a mild contrast and sharpen pass, and a downscale of oversized
// images. The result is re-encoded as PNG.
func Preprocess(image []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(image), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	processed := imaging.Grayscale(img)
	processed = imaging.AdjustContrast(processed, 15)
	processed = imaging.Sharpen(processed, 0.5)

	bounds := processed.Bounds()
	if bounds.Dx() > maxUploadDimension || bounds.Dy() > maxUploadDimension {
		processed = imaging.Fit(processed, maxUploadDimension, maxUploadDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, processed); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
