// Package rainfall is a small hybrid software/hardware 3D renderer built on Ebitengine. Vertices are transformed and
// shaded on the CPU, painter-sorted, and drawn as triangles; the background and post-processing run as Kage shaders.
package rainfall

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// MaxTriangleCount is the number of unshared triangles whose vertices fit in a single uint16-indexed draw call.
const MaxTriangleCount = 21845

// MaxQuadCount is the number of quads (four vertices each) that fit in a single uint16-indexed draw call.
const MaxQuadCount = 16383

var defaultImg = ebiten.NewImage(3, 3)

// defaultSrc is the center pixel of defaultImg; sampling it never bleeds into transparent edges.
var defaultSrc = defaultImg.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

func init() {
	defaultImg.Fill(color.White)
}
