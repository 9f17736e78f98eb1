package rainfall

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/rainfall/math32"
)

// ditherTable is the 8x8 ordered-dither threshold matrix, row-major (index = x + y*8).
var ditherTable = [64]float32{
	0.015625, 0.515625, 0.140625, 0.640625, 0.046875, 0.546875, 0.171875, 0.671875,
	0.765625, 0.265625, 0.890625, 0.390625, 0.796875, 0.296875, 0.921875, 0.421875,
	0.203125, 0.703125, 0.078125, 0.578125, 0.234375, 0.734375, 0.109375, 0.609375,
	0.953125, 0.453125, 0.828125, 0.328125, 0.984375, 0.484375, 0.859375, 0.359375,
	0.0625, 0.5625, 0.1875, 0.6875, 0.03125, 0.53125, 0.15625, 0.65625,
	0.8125, 0.3125, 0.9375, 0.4375, 0.78125, 0.28125, 0.90625, 0.40625,
	0.25, 0.75, 0.125, 0.625, 0.21875, 0.71875, 0.09375, 0.59375,
	1.0, 0.5, 0.875, 0.375, 0.96875, 0.46875, 0.84375, 0.34375,
}

// DitherThresholds returns a copy of the 8x8 threshold matrix.
func DitherThresholds() [64]float32 {
	return ditherTable
}

// DitherThreshold returns the threshold for the dither cell at the given tile coordinates; coordinates wrap every 8 cells.
func DitherThreshold(x, y int) float32 {
	return ditherTable[(y&7)*8+(x&7)]
}

const ditherShaderText = `//kage:unit pixels
package main

var Resolution vec2
var Strength float
var PatternScale float
var Thresholds [64]float

func random(co vec2) float {
	return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453)
}

func dither8x8(uv vec2, brightness float) float {
	tile := floor(mod(uv*Resolution/PatternScale, 8))
	index := int(tile.x) + int(tile.y)*8
	limit := 0.0
	for i := 0; i < 64; i++ {
		if i == index {
			limit = Thresholds[i]
		}
	}
	if brightness < limit {
		return 0
	}
	return 1
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	tex := imageSrc0At(srcPos)
	uv := (srcPos - imageSrc0Origin()) / imageSrc0Size()
	uv.y = 1 - uv.y
	luminance := dot(tex.rgb, vec3(0.299, 0.587, 0.114))
	v := dither8x8(uv, luminance)*Strength + random(uv)*(1-Strength)*0.1
	return vec4(v, v, v, 1)
}
`

// DitherFilter is a full-screen post-process that reduces a rendered frame to black and white using ordered
// (Bayer-style) dithering, with a faint layer of noise on top.
type DitherFilter struct {
	Width, Height float32 // Resolution of the output surface, in logical pixels; the pattern repeats every 8 of these.
	Strength      float32 // Weight of the dithered level in the result; the noise is scaled by the remainder.
	PatternScale  float32 // Size of a single dither cell, in logical pixels.

	shader *ebiten.Shader
}

// NewDitherFilter returns a new DitherFilter with the given output resolution, a Strength of 0.7, and a
// PatternScale of 1.
func NewDitherFilter(w, h int) *DitherFilter {
	return &DitherFilter{
		Width:        float32(w),
		Height:       float32(h),
		Strength:     0.7,
		PatternScale: 1,
	}
}

// SetResolution sets the resolution of the output surface.
func (filter *DitherFilter) SetResolution(w, h int) {
	filter.Width = float32(w)
	filter.Height = float32(h)
}

// Luminance returns the perceptual brightness of an RGB triplet.
func Luminance(r, g, b float32) float32 {
	return 0.299*r + 0.587*g + 0.114*b
}

// DitherNoise is the hash-style pseudo-random function used to add grain to the dithered result. It's deterministic
// for a given coordinate and returns a value in [0, 1).
func DitherNoise(u, v float32) float32 {
	d := float64(u)*12.9898 + float64(v)*78.233
	x := math.Sin(d) * 43758.5453
	return float32(x - math.Floor(x))
}

// Tile returns the dither matrix cell for the given UV coordinate (origin at the bottom-left, [0, 1] across the
// output surface).
func (filter *DitherFilter) Tile(u, v float32) (int, int) {
	scale := filter.PatternScale
	if scale <= 0 {
		scale = 1
	}
	x := math32.Floor(math32.Mod(u*filter.Width/scale, 8))
	y := math32.Floor(math32.Mod(v*filter.Height/scale, 8))
	return int(x) & 7, int(y) & 7
}

// Level returns the dithered level (exactly 0 or 1) for a pixel at the UV coordinate given with the provided luminance.
func (filter *DitherFilter) Level(u, v, luminance float32) float32 {
	x, y := filter.Tile(u, v)
	if luminance < DitherThreshold(x, y) {
		return 0
	}
	return 1
}

// Shade returns the final grey value for a pixel at the given UV coordinate with the given linear color.
func (filter *DitherFilter) Shade(u, v float32, r, g, b float32) float32 {
	level := filter.Level(u, v, Luminance(r, g, b))
	return level*filter.Strength + DitherNoise(u, v)*(1-filter.Strength)*0.1
}

// ApplyImage runs the filter on the CPU, returning a greyscale copy of the source image. It produces the same result
// as Apply, and is used for screenshots and for testing without a graphics context.
func (filter *DitherFilter) ApplyImage(src image.Image) *image.Gray {

	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	w := float32(bounds.Dx())
	h := float32(bounds.Dy())

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			u := (float32(x) + 0.5) / w
			v := 1 - (float32(y)+0.5)/h
			shade := filter.Shade(u, v, float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff)
			out.SetGray(x, y, color.Gray{Y: uint8(math32.Clamp(shade, 0, 1)*255 + 0.5)})
		}
	}

	return out

}

// Apply draws the dithered version of src onto dst, filling dst's top-left src-sized rectangle.
func (filter *DitherFilter) Apply(dst, src *ebiten.Image) {

	if filter.shader == nil {
		shader, err := ebiten.NewShader([]byte(ditherShaderText))
		if err != nil {
			panic(err)
		}
		filter.shader = shader
	}

	bounds := src.Bounds()

	opt := &ebiten.DrawRectShaderOptions{}
	opt.Images[0] = src
	opt.Uniforms = map[string]any{
		"Resolution":   []float32{filter.Width, filter.Height},
		"Strength":     filter.Strength,
		"PatternScale": math32.Max(filter.PatternScale, 0.0001),
		"Thresholds":   ditherTable[:],
	}

	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), filter.shader, opt)

}
