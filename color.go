package rainfall

import (
	"image/color"

	"github.com/solarlune/rainfall/math32"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// NewColorFromHexInt returns an opaque Color from a 0xRRGGBB integer.
func NewColorFromHexInt(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

// MultiplyRGB returns a copy of the Color with the R, G, and B components multiplied by the scalar given.
func (c Color) MultiplyRGB(scalar float32) Color {
	c.R *= scalar
	c.G *= scalar
	c.B *= scalar
	return c
}

// Premultiplied returns a copy of the Color with its RGB components multiplied by its alpha, which is what
// Ebitengine expects for vertex colors.
func (c Color) Premultiplied() Color {
	c.R *= c.A
	c.G *= c.A
	c.B *= c.A
	return c
}

// ToRGBA64 converts the Color to an image/color.RGBA64, clamping each component.
func (c Color) ToRGBA64() color.RGBA64 {
	conv := func(v float32) uint16 {
		return uint16(math32.Clamp(v, 0, 1) * 0xffff)
	}
	return color.RGBA64{conv(c.R), conv(c.G), conv(c.B), conv(c.A)}
}

// ConvertTosRGB converts the Color from linear space to sRGB.
func (c Color) ConvertTosRGB() Color {
	c.R = linearToSRGB(c.R)
	c.G = linearToSRGB(c.G)
	c.B = linearToSRGB(c.B)
	return c
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

// ConvertToLinear converts the Color from sRGB to linear space.
func (c Color) ConvertToLinear() Color {
	c.R = sRGBToLinear(c.R)
	c.G = sRGBToLinear(c.G)
	c.B = sRGBToLinear(c.B)
	return c
}

func sRGBToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}
