// Package hdr holds linear, floating-point RGB images, such as the panoramas decoded from Radiance RGBE (.hdr) files.
package hdr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	hdrimage "github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
)

// ErrFormat is returned when the data isn't a Radiance RGBE image the viewer can use.
var ErrFormat = errors.New("hdr: not a usable radiance rgbe image")

const (
	MaxDimension = 1 << 15 // Largest width or height Decode accepts
	MaxPixels    = 1 << 26 // Largest pixel count Decode accepts
)

// Image is a linear, floating-point RGB image. Pixels are stored row by row, top to bottom, three float32s per pixel.
type Image struct {
	Width, Height int
	Pix           []float32
}

// NewImage returns a black Image of the given size.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]float32, w*h*3)}
}

// RGB returns the linear color of the pixel at x, y.
func (img *Image) RGB(x, y int) (r, g, b float32) {
	i := (y*img.Width + x) * 3
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// SetRGB sets the linear color of the pixel at x, y.
func (img *Image) SetRGB(x, y int, r, g, b float32) {
	i := (y*img.Width + x) * 3
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
}

// Decode reads a Radiance RGBE image from r. The header is checked before any pixels are allocated; images wider or
// taller than MaxDimension, or with more than MaxPixels pixels, are rejected with ErrFormat.
func Decode(r io.Reader) (img *Image, err error) {

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	config, err := rgbe.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	if err := checkSize(config.Width, config.Height); err != nil {
		return nil, err
	}

	// Corrupt scanlines can make the codec index out of range.
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: %v", ErrFormat, r)
		}
	}()

	decoded, err := rgbe.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	return FromImage(decoded), nil

}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension || w*h > MaxPixels {
		return fmt.Errorf("%w: image size %dx%d is out of range", ErrFormat, w, h)
	}
	return nil
}

// FromImage copies src into a new Image. High dynamic range sources keep their full range; other images are read as
// 16-bit colors scaled to [0, 1].
func FromImage(src image.Image) *Image {

	bounds := src.Bounds()
	out := NewImage(bounds.Dx(), bounds.Dy())

	hdrSrc, isHDR := src.(hdrimage.Image)

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {

			if isHDR {
				r, g, b, _ := hdrSrc.HDRAt(bounds.Min.X+x, bounds.Min.Y+y).HDRRGBA()
				out.SetRGB(x, y, float32(r), float32(g), float32(b))
				continue
			}

			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.SetRGB(x, y, float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff)

		}
	}

	return out

}
