package rainfall

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/rainfall/hdr"
	"github.com/solarlune/rainfall/math32"
	"golang.org/x/image/draw"
)

const (
	// ReflectionMapWidth is the width of the downsampled, linear copy of an environment map that surfaces reflect.
	// Smaller means blurrier (and cheaper) reflections.
	ReflectionMapWidth = 256
	// MaxBackgroundWidth is the widest a background panorama is uploaded at; larger panoramas are scaled down.
	MaxBackgroundWidth = 4096
)

// EnvironmentMap is an equirectangular (latitude / longitude) panorama used as both the Scene's background and
// the source of surface reflections.
type EnvironmentMap struct {
	Radiance *hdr.Image // Downsampled linear radiance sampled when shading reflective surfaces
	Exposure float32    // Exposure applied before tone-mapping

	ldr        *image.RGBA
	background *ebiten.Image
}

// NewEnvironmentMap creates an EnvironmentMap from the provided HDR panorama. The background is tone-mapped
// (ACES filmic, with the exposure given, into sRGB); reflections sample a downsampled linear copy.
func NewEnvironmentMap(src *hdr.Image, exposure float32) *EnvironmentMap {

	ldr := ToneMapEquirect(src, exposure)

	return &EnvironmentMap{
		Radiance: src.Downsample(ReflectionMapWidth),
		Exposure: exposure,
		ldr:      DownsampleEquirect(ldr, MaxBackgroundWidth),
	}

}

// BackgroundImage returns the tone-mapped panorama, uploading it to the GPU on first use.
func (env *EnvironmentMap) BackgroundImage() *ebiten.Image {
	if env.background == nil {
		env.background = ebiten.NewImageFromImage(env.ldr)
	}
	return env.background
}

// Sample returns the linear radiance of the environment seen in the world-space direction given.
func (env *EnvironmentMap) Sample(dir Vector3) Color {
	u, v := EquirectUV(dir)
	r, g, b := env.Radiance.Bilinear(u, v)
	return NewColor(r, g, b, 1)
}

// ToneMapEquirect converts a linear HDR image into an 8-bit sRGB image using the ACES filmic curve.
func ToneMapEquirect(src *hdr.Image, exposure float32) *image.RGBA {

	out := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			r, g, b := src.RGB(x, y)
			c := ACESFilmic(NewColor(r, g, b, 1), exposure).ConvertTosRGB()
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(math32.Clamp(c.R, 0, 1)*255 + 0.5),
				G: uint8(math32.Clamp(c.G, 0, 1)*255 + 0.5),
				B: uint8(math32.Clamp(c.B, 0, 1)*255 + 0.5),
				A: 255,
			})
		}
	}

	return out

}

// DownsampleEquirect scales an equirectangular image down to the width given, keeping the 2:1 aspect ratio.
// Images that are already small enough are returned as-is.
func DownsampleEquirect(src *image.RGBA, width int) *image.RGBA {

	if src.Bounds().Dx() <= width {
		return src
	}

	height := width / 2
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst

}

// ACESFilmic applies the exposure given and the ACES filmic tone-mapping curve (Stephen Hill's fit) to a linear Color,
// returning a linear Color clamped to [0, 1].
func ACESFilmic(c Color, exposure float32) Color {

	// The fit expects exposure to be pre-scaled; 0.6 is the conventional normalization
	r, g, b := c.R*exposure/0.6, c.G*exposure/0.6, c.B*exposure/0.6

	ir := 0.59719*r + 0.35458*g + 0.04823*b
	ig := 0.07600*r + 0.90834*g + 0.01566*b
	ib := 0.02840*r + 0.13383*g + 0.83777*b

	ir, ig, ib = rrtAndODTFit(ir), rrtAndODTFit(ig), rrtAndODTFit(ib)

	c.R = math32.Clamp(1.60475*ir-0.53108*ig-0.07367*ib, 0, 1)
	c.G = math32.Clamp(-0.10208*ir+1.10813*ig-0.00605*ib, 0, 1)
	c.B = math32.Clamp(-0.00327*ir-0.07276*ig+1.07602*ib, 0, 1)

	return c

}

func rrtAndODTFit(v float32) float32 {
	a := v*(v+0.0245786) - 0.000090537
	b := v*(0.983729*v+0.4329510) + 0.238081
	return a / b
}

// EquirectUV maps a world-space direction onto equirectangular texture coordinates, both ranging from 0 to 1.
// U wraps around the horizon starting from -X; V runs from the top of the image (straight up) to the bottom.
func EquirectUV(dir Vector3) (u, v float32) {
	dir = dir.Unit()
	u = math32.Atan2(dir.Z, dir.X)/(2*math32.Pi) + 0.5
	v = math32.Acos(math32.Clamp(dir.Y, -1, 1)) / math32.Pi
	return u, v
}
