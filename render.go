package rainfall

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/rainfall/math32"
)

// DebugInfo holds debugging information for the last frame the Renderer drew.
type DebugInfo struct {
	FrameTime  time.Duration // CPU time spent transforming, shading, sorting, and submitting the frame
	DrawnTris  int           // Number of drawn triangles, excluding those culled or behind the camera
	TotalTris  int           // Total number of triangles
	DrawnDrops int           // Number of rain drops in front of the camera
	DrawCalls  int
}

// Text formats the DebugInfo for display, along with the current ticks and frames per second.
func (info DebugInfo) Text(tps, fps float64) string {
	ft := float32(info.FrameTime.Round(time.Microsecond).Microseconds()) / 1000
	return fmt.Sprintf(
		"TPS: %.1f\nFPS: %.1f\nRender frame-time: %.2fms\nDraw calls: %d\nRendered triangles: %d/%d\nRain drops in view: %d",
		tps,
		fps,
		ft,
		info.DrawCalls,
		info.DrawnTris,
		info.TotalTris,
		info.DrawnDrops,
	)
}

const backgroundShaderText = `//kage:unit pixels
package main

var Right vec3
var Up vec3
var Back vec3
var TanHalfFOV float
var Aspect float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {

	ndc := (dstPos.xy-imageDstOrigin())/imageDstSize()*2 - 1
	ndc.y = -ndc.y

	dir := normalize(Right*ndc.x*TanHalfFOV*Aspect + Up*ndc.y*TanHalfFOV - Back)

	u := atan2(dir.z, dir.x)/(2*3.14159265) + 0.5
	v := acos(clamp(dir.y, -1, 1)) / 3.14159265

	size := imageSrc0Size()
	pos := clamp(vec2(fract(u), v)*size, vec2(0.5), size-0.5)

	return imageSrc0At(imageSrc0Origin() + pos)

}
`

// shadedVertex is a vertex after it's been transformed and lit for the current frame.
type shadedVertex struct {
	clip             Vector4
	screenX, screenY float32
	color            Color
	behindCamera     bool
}

// Renderer draws a Scene from a Camera's point of view into the Camera's color texture.
type Renderer struct {
	DebugInfo DebugInfo

	// SortingBins is the number of depth bins triangles are painter-sorted into.
	SortingBins int

	backgroundShader *ebiten.Shader

	bucket     *sortingTriangleBucket
	shaded     []shadedVertex
	vertexList []ebiten.Vertex
	indexList  []uint16

	farDrops  []int
	nearDrops []int
}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		SortingBins: 512,
		vertexList:  make([]ebiten.Vertex, 0, MaxTriangleCount*3),
		indexList:   make([]uint16, 0, MaxTriangleCount*3),
	}
}

// Render draws the Scene into the Camera's color texture: first the background, then the rain drops farther than the
// Scene's origin, then the Scene's models (painter-sorted), and finally the rain drops nearer than the origin.
func (r *Renderer) Render(scene *Scene, camera *Camera) {

	start := time.Now()

	r.DebugInfo = DebugInfo{}

	target := camera.ColorTexture()
	target.Clear()

	r.drawBackground(target, scene, camera)

	viewProjection := camera.ViewProjection()

	r.farDrops = r.farDrops[:0]
	r.nearDrops = r.nearDrops[:0]

	if scene.Rain != nil && scene.Rain.Node.WorldVisible() {
		r.splitRain(scene, camera)
		r.drawRain(target, scene.Rain, camera, viewProjection, r.farDrops)
	}

	r.drawModels(target, scene, camera, viewProjection)

	if scene.Rain != nil && len(r.nearDrops) > 0 {
		r.drawRain(target, scene.Rain, camera, viewProjection, r.nearDrops)
	}

	if scene.Rain != nil {
		scene.Rain.MarkClean()
	}

	r.DebugInfo.FrameTime = time.Since(start)

}

func (r *Renderer) drawBackground(target *ebiten.Image, scene *Scene, camera *Camera) {

	if scene.Environment == nil {
		target.Fill(scene.BackgroundColor.ToRGBA64())
		return
	}

	if r.backgroundShader == nil {
		shader, err := ebiten.NewShader([]byte(backgroundShaderText))
		if err != nil {
			panic(err)
		}
		r.backgroundShader = shader
	}

	bg := scene.Environment.BackgroundImage()
	sb := bg.Bounds()
	tb := target.Bounds()

	transform := camera.Transform()
	right := transform.Right()
	up := transform.Up()
	back := transform.Forward()

	sx0, sy0, sx1, sy1 := float32(sb.Min.X), float32(sb.Min.Y), float32(sb.Max.X), float32(sb.Max.Y)
	dx1, dy1 := float32(tb.Dx()), float32(tb.Dy())

	vertices := []ebiten.Vertex{
		{DstX: 0, DstY: 0, SrcX: sx0, SrcY: sy0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: dx1, DstY: 0, SrcX: sx1, SrcY: sy0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: 0, DstY: dy1, SrcX: sx0, SrcY: sy1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: dx1, DstY: dy1, SrcX: sx1, SrcY: sy1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}

	opt := &ebiten.DrawTrianglesShaderOptions{}
	opt.Images[0] = bg
	opt.Uniforms = map[string]any{
		"Right":      []float32{right.X, right.Y, right.Z},
		"Up":         []float32{up.X, up.Y, up.Z},
		"Back":       []float32{back.X, back.Y, back.Z},
		"TanHalfFOV": math32.Tan(math32.ToRadians(camera.FieldOfView()) / 2),
		"Aspect":     camera.AspectRatio(),
	}

	target.DrawTrianglesShader(vertices, []uint16{0, 1, 2, 1, 3, 2}, r.backgroundShader, opt)
	r.DebugInfo.DrawCalls++

}

// splitRain sorts the rain drops into those farther away than the Scene's origin (which the loaded model is centered
// on) and those nearer to the camera.
func (r *Renderer) splitRain(scene *Scene, camera *Camera) {

	rain := scene.Rain

	view := camera.ViewMatrix()
	transform := rain.Node.Transform().Mult(view)

	splitDepth := float32(-math32.MaxFloat32)
	if scene.Model != nil {
		splitDepth = -view.MultVec(scene.Root.WorldPosition()).Z
	}

	for i := 0; i < rain.Count(); i++ {
		depth := -transform.MultVec(rain.Position(i)).Z
		if depth <= camera.Near() || depth >= camera.Far() {
			continue
		}
		if depth >= splitDepth {
			r.farDrops = append(r.farDrops, i)
		} else {
			r.nearDrops = append(r.nearDrops, i)
		}
	}

	r.DebugInfo.DrawnDrops = len(r.farDrops) + len(r.nearDrops)

}

// drawRain draws the drops given as camera-facing squares, blended additively. A drop's size is attenuated by its
// distance from the camera.
func (r *Renderer) drawRain(target *ebiten.Image, rain *RainField, camera *Camera, viewProjection Matrix4, drops []int) {

	transform := rain.Node.Transform().Mult(viewProjection)

	_, texHeight := camera.TextureSize()
	texW, texH := float32(target.Bounds().Dx()), float32(target.Bounds().Dy())

	color := rain.Settings.Color
	color.A = rain.Settings.Opacity
	color = color.Premultiplied()

	opt := &ebiten.DrawTrianglesOptions{Blend: ebiten.BlendLighter}

	r.vertexList = r.vertexList[:0]
	r.indexList = r.indexList[:0]

	flush := func() {
		if len(r.indexList) == 0 {
			return
		}
		target.DrawTriangles(r.vertexList, r.indexList, defaultSrc, opt)
		r.DebugInfo.DrawCalls++
		r.vertexList = r.vertexList[:0]
		r.indexList = r.indexList[:0]
	}

	for _, i := range drops {

		clip := transform.MultVecW(rain.Position(i))

		x, y, ok := camera.clipToScreen(clip)
		if !ok {
			continue
		}

		half := math32.Max(rain.Settings.Size*(float32(texHeight)/2)/clip.W, 1) / 2

		if x+half < 0 || y+half < 0 || x-half > texW || y-half > texH {
			continue
		}

		base := uint16(len(r.vertexList))

		for _, corner := range [4][2]float32{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			r.vertexList = append(r.vertexList, ebiten.Vertex{
				DstX:   x + corner[0]*half,
				DstY:   y + corner[1]*half,
				SrcX:   1.5,
				SrcY:   1.5,
				ColorR: color.R,
				ColorG: color.G,
				ColorB: color.B,
				ColorA: color.A,
			})
		}

		r.indexList = append(r.indexList, base, base+1, base+2, base+1, base+3, base+2)

		if len(r.vertexList)/4 >= MaxQuadCount {
			flush()
		}

	}

	flush()

}

func (r *Renderer) drawModels(target *ebiten.Image, scene *Scene, camera *Camera, viewProjection Matrix4) {

	if r.bucket == nil || len(r.bucket.bins) != r.SortingBins {
		r.bucket = newSortingTriangleBucket(r.SortingBins)
	}

	r.bucket.Clear()
	r.shaded = r.shaded[:0]

	cameraPos := camera.WorldPosition()

	minDepth := math32.MaxFloat32
	maxDepth := -math32.MaxFloat32

	for _, model := range scene.Models() {

		if model.Mesh == nil || !model.WorldVisible() {
			continue
		}

		transform := model.Transform()
		mvp := transform.Mult(viewProjection)

		for _, part := range model.Mesh.Parts {

			r.DebugInfo.TotalTris += part.TriangleCount()

			// Parts can share vertices; each one is shaded with its own Material.
			partOffset := len(r.shaded)
			firstIndex := -1

			for _, index := range part.Indices {
				if firstIndex < 0 || index < firstIndex {
					firstIndex = index
				}
			}

			if firstIndex < 0 {
				continue
			}

			lastIndex := firstIndex
			for _, index := range part.Indices {
				lastIndex = max(lastIndex, index)
			}

			for vi := firstIndex; vi <= lastIndex; vi++ {
				v := model.Mesh.Vertices[vi]
				clip := mvp.MultVecW(v.Position)
				sv := shadedVertex{clip: clip, behindCamera: clip.W <= camera.Near()}
				sv.screenX, sv.screenY, _ = camera.clipToScreen(clip)
				worldPos := transform.MultVec(v.Position)
				worldNormal := transform.MultVecNoTranslate(v.Normal).Unit()
				sv.color = ShadeVertex(scene, part.Material, worldPos, worldNormal, cameraPos)
				r.shaded = append(r.shaded, sv)
			}

			for t := 0; t+2 < len(part.Indices); t += 3 {

				a := part.Indices[t] - firstIndex + partOffset
				b := part.Indices[t+1] - firstIndex + partOffset
				c := part.Indices[t+2] - firstIndex + partOffset

				va, vb, vc := r.shaded[a], r.shaded[b], r.shaded[c]

				if va.behindCamera || vb.behindCamera || vc.behindCamera {
					continue
				}

				if part.Material.BackfaceCulling {
					area := (vb.screenX-va.screenX)*(vc.screenY-va.screenY) - (vc.screenX-va.screenX)*(vb.screenY-va.screenY)
					if area >= 0 {
						continue
					}
				}

				depth := (va.clip.W + vb.clip.W + vc.clip.W) / 3

				if depth > camera.Far() {
					continue
				}

				minDepth = math32.Min(minDepth, depth)
				maxDepth = math32.Max(maxDepth, depth)

				r.bucket.AddTriangle(depth, a, b, c)

			}

		}

	}

	if len(r.bucket.unsetTris) == 0 {
		return
	}

	r.bucket.Sort(minDepth, maxDepth)

	r.vertexList = r.vertexList[:0]
	r.indexList = r.indexList[:0]

	opt := &ebiten.DrawTrianglesOptions{}

	flush := func() {
		if len(r.indexList) == 0 {
			return
		}
		target.DrawTriangles(r.vertexList, r.indexList, defaultSrc, opt)
		r.DebugInfo.DrawCalls++
		r.vertexList = r.vertexList[:0]
		r.indexList = r.indexList[:0]
	}

	r.bucket.ForEachBackToFront(func(tri sortingTriangle) {

		for _, index := range tri.vertexIndices {
			sv := r.shaded[index]
			r.indexList = append(r.indexList, uint16(len(r.vertexList)))
			r.vertexList = append(r.vertexList, ebiten.Vertex{
				DstX:   sv.screenX,
				DstY:   sv.screenY,
				SrcX:   1.5,
				SrcY:   1.5,
				ColorR: sv.color.R,
				ColorG: sv.color.G,
				ColorB: sv.color.B,
				ColorA: sv.color.A,
			})
		}

		r.DebugInfo.DrawnTris++

		if len(r.vertexList) >= MaxTriangleCount*3 {
			flush()
		}

	})

	flush()

}

// ShadeVertex returns the final (tone-mapped, sRGB, premultiplied) color of a surface point with the Material given.
// The surface is lit by the Scene's ambient light plus, if the Material has an environment map, diffuse light from the
// environment in the normal's direction and a reflection of the environment in the mirrored view direction.
func ShadeVertex(scene *Scene, material *Material, worldPos, worldNormal, cameraPos Vector3) Color {

	base := material.Color
	ambient := scene.AmbientColor.MultiplyRGB(scene.AmbientEnergy)

	irradiance := ambient
	exposure := float32(1)

	var specular Color

	if env := material.EnvMap; env != nil {

		exposure = env.Exposure

		diffuse := env.Sample(worldNormal).MultiplyRGB(material.EnvMapIntensity)
		irradiance.R += diffuse.R
		irradiance.G += diffuse.G
		irradiance.B += diffuse.B

		viewDir := worldPos.Sub(cameraPos).Unit()
		reflected := env.Sample(viewDir.Reflect(worldNormal)).MultiplyRGB(material.EnvMapIntensity * material.Reflectivity())

		// Metals tint their reflections with their base color.
		m := material.Metalness
		specular = NewColor(
			reflected.R*math32.Lerp(1, base.R, m),
			reflected.G*math32.Lerp(1, base.G, m),
			reflected.B*math32.Lerp(1, base.B, m),
			1,
		)

	}

	dielectric := 1 - material.Metalness

	lit := NewColor(
		base.R*irradiance.R*dielectric+specular.R,
		base.G*irradiance.G*dielectric+specular.G,
		base.B*irradiance.B*dielectric+specular.B,
		1,
	)

	out := ACESFilmic(lit, exposure).ConvertTosRGB()
	out.A = base.A

	return out.Premultiplied()

}
