package imagesrc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeBytesScalesToRequestedSize(t *testing.T) {
	data := solidPNG(t, 8, 8, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	px, err := New().DecodeBytes(data, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, px.Width)
	assert.Equal(t, 4, px.Height)
	assert.Equal(t, 16, px.Stride)
	require.Len(t, px.RGBA, 16*4)

	assert.Equal(t, byte(200), px.RGBA[0])
	assert.Equal(t, byte(100), px.RGBA[1])
	assert.Equal(t, byte(50), px.RGBA[2])
	assert.Equal(t, byte(255), px.RGBA[3])
}

func TestDecodeBytesUpscale(t *testing.T) {
	data := solidPNG(t, 2, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	px, err := New().DecodeBytes(data, 6, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, px.Width)
	assert.Equal(t, 6, px.Height)
	assert.Equal(t, byte(10), px.RGBA[0])
}

func TestDecodeBytesInvalidData(t *testing.T) {
	_, err := New().DecodeBytes([]byte("not an image"), 4, 4)
	assert.Error(t, err)
}
