package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoded(t *testing.T, w, h int, asPNG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if asPNG {
		require.NoError(t, png.Encode(&buf, img))
	} else {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestProcess_FitsLargeImage(t *testing.T) {
	p := NewProcessor(Config{MaxWidth: 100, MaxHeight: 100, ThumbWidth: 20, ThumbHeight: 20, Quality: 80})

	v, err := p.Process(encoded(t, 400, 200, false))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", v.ContentType)
	assert.Equal(t, 100, v.Width)
	assert.Equal(t, 50, v.Height)

	thumb, _, err := image.Decode(bytes.NewReader(v.Thumbnail))
	require.NoError(t, err)
	assert.Equal(t, 20, thumb.Bounds().Dx())
	assert.Equal(t, 20, thumb.Bounds().Dy())
}

func TestProcess_KeepsSmallPNG(t *testing.T) {
	v, err := NewProcessor(LogoConfig()).Process(encoded(t, 64, 32, true))
	require.NoError(t, err)

	assert.Equal(t, "image/png", v.ContentType)
	assert.Equal(t, 64, v.Width)
	assert.Equal(t, 32, v.Height)
}

func TestProcess_RejectsGarbage(t *testing.T) {
	_, err := NewProcessor(LogoConfig()).Process([]byte("not an image"))
	assert.Error(t, err)
}

func TestLogoKeys(t *testing.T) {
	display, thumb := LogoKeys("v1", "u1", ".png")

	assert.Equal(t, "vendors/v1/logo/u1.png", display)
	assert.Equal(t, "vendors/v1/logo/u1_thumb.png", thumb)
}
