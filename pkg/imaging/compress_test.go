package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompress(t *testing.T) {
	t.Run("downscales and converts to jpeg", func(t *testing.T) {
		out, err := Compress(pngBytes(t, 400, 200), 100, DefaultQuality)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("keeps small images", func(t *testing.T) {
		out, err := Compress(pngBytes(t, 40, 60), 100, DefaultQuality)
		require.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 40, cfg.Width)
		assert.Equal(t, 60, cfg.Height)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := Compress([]byte("%PDF-1.7"), 100, DefaultQuality)
		assert.Error(t, err)
	})
}

func TestFitWithin(t *testing.T) {
	w, h := fitWithin(3000, 1000, 1500)
	assert.Equal(t, 1500, w)
	assert.Equal(t, 500, h)

	w, h = fitWithin(1000, 3000, 1500)
	assert.Equal(t, 500, w)
	assert.Equal(t, 1500, h)

	w, h = fitWithin(5000, 1, 100)
	assert.Equal(t, 100, w)
	assert.Equal(t, 1, h)
}
