package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, width, height int) image.Image {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func assertNormalized(t *testing.T, data []byte) {
	t.Helper()

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	bounds := img.Bounds()
	assert.Equal(t, ModelImageSize, bounds.Dx())
	assert.Equal(t, ModelImageSize, bounds.Dy())
}

func TestNormalizeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(t, 100, 80), nil))

	normalized, err := Normalize(buf.Bytes())
	require.NoError(t, err)
	assertNormalized(t, normalized)
}

func TestNormalizePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(t, 300, 200)))

	normalized, err := Normalize(buf.Bytes())
	require.NoError(t, err)
	assertNormalized(t, normalized)
}

func TestNormalizeIgnoresAspectRatio(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(t, 1024, 64)))

	normalized, err := Normalize(buf.Bytes())
	require.NoError(t, err)
	assertNormalized(t, normalized)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(bytes.Repeat([]byte("x"), 600))
	assert.Error(t, err)
}
