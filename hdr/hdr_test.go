package hdr

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(resolution string) []byte {
	return []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n" + resolution + "\n")
}

func TestDecodeFlat(t *testing.T) {

	data := header("-Y 2 +X 2")
	data = append(data,
		128, 64, 32, 129, // 1.0, 0.5, 0.25
		0, 0, 0, 0,
		128, 128, 128, 128, // 0.5 grey
		64, 128, 192, 130, // 1, 2, 3
	)

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, img.Width)
	require.Equal(t, 2, img.Height)

	r, g, b := img.RGB(0, 0)
	assert.InDelta(t, 1, r, 0.01)
	assert.InDelta(t, 0.5, g, 0.01)
	assert.InDelta(t, 0.25, b, 0.01)

	r, g, b = img.RGB(1, 0)
	assert.InDelta(t, 0, r, 0.01)
	assert.InDelta(t, 0, g, 0.01)
	assert.InDelta(t, 0, b, 0.01)

	r, _, _ = img.RGB(0, 1)
	assert.InDelta(t, 0.5, r, 0.01)

	r, g, b = img.RGB(1, 1)
	assert.InDelta(t, 1, r, 0.02)
	assert.InDelta(t, 2, g, 0.02)
	assert.InDelta(t, 3, b, 0.02)

}

func TestDecodeRLE(t *testing.T) {

	const width = 8

	data := header("-Y 1 +X 8")
	data = append(data, 2, 2, 0, width)

	// R: a run of 8, G: 8 literals, B: run of 4 then run of 4, E: run of 8
	data = append(data, 128+8, 128)
	data = append(data, 8, 0, 16, 32, 48, 64, 80, 96, 112)
	data = append(data, 128+4, 10, 128+4, 20)
	data = append(data, 128+8, 129)

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, width, img.Width)

	for x := 0; x < width; x++ {
		r, g, b := img.RGB(x, 0)
		assert.InDelta(t, 1, r, 0.01)
		assert.InDelta(t, float32(x*16)/128, g, 0.01)
		if x < 4 {
			assert.InDelta(t, float32(10)/128, b, 0.01)
		} else {
			assert.InDelta(t, float32(20)/128, b, 0.01)
		}
	}

}

func TestDecodeErrors(t *testing.T) {

	_, err := Decode(bytes.NewReader([]byte("\x89PNG\r\n")))
	assert.ErrorIs(t, err, ErrFormat)

	// A header claiming an enormous image is rejected before any pixels are allocated.
	_, err = Decode(bytes.NewReader([]byte("#?RADIANCE\n\n-Y 2000000000 +X 2000000000\n")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode(bytes.NewReader(header("-Y 40000 +X 2")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode(bytes.NewReader(header("-Y 8192 +X 16384")))
	assert.ErrorIs(t, err, ErrFormat, "too many pixels in total")

}

func TestFromImage(t *testing.T) {

	src := image.NewRGBA(image.Rect(10, 10, 12, 11))
	src.Set(10, 10, color.RGBA{255, 0, 0, 255})
	src.Set(11, 10, color.RGBA{0, 0, 255, 255})

	img := FromImage(src)
	require.Equal(t, 2, img.Width)
	require.Equal(t, 1, img.Height)

	r, _, b := img.RGB(0, 0)
	assert.Equal(t, float32(1), r)
	assert.Equal(t, float32(0), b)

	_, _, b = img.RGB(1, 0)
	assert.Equal(t, float32(1), b)

}
