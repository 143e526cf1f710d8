package vision

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ModelImageSize is the fixed edge length images are resized to before inference.
const ModelImageSize = 512

// Normalize prepares raw image bytes for the inference model: decode, flatten
// non-JPEG sources through a JPEG round-trip, and resize to exactly
// ModelImageSize x ModelImageSize, ignoring aspect ratio.
func Normalize(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if format != "jpeg" {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
			return nil, fmt.Errorf("failed to convert image to JPEG: %w", err)
		}
		img, err = imaging.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read converted image: %w", err)
		}
	}

	resized := imaging.Resize(img, ModelImageSize, ModelImageSize, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}
	return out.Bytes(), nil
}
