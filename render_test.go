package rainfall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortingTriangleBucket(t *testing.T) {

	bucket := newSortingTriangleBucket(16)

	bucket.AddTriangle(5, 0, 1, 2)
	bucket.AddTriangle(50, 3, 4, 5)
	bucket.AddTriangle(20, 6, 7, 8)
	bucket.AddTriangle(1, 9, 10, 11)

	bucket.Sort(1, 50)

	depths := []float32{}
	bucket.ForEachBackToFront(func(tri sortingTriangle) {
		depths = append(depths, tri.depth)
	})

	assert.Equal(t, []float32{50, 20, 5, 1}, depths)

	bucket.Clear()

	count := 0
	bucket.ForEachBackToFront(func(tri sortingTriangle) { count++ })
	assert.Zero(t, count)

}

func TestShadeVertexAmbient(t *testing.T) {

	scene := NewScene("test")

	white := NewMaterial("white")
	grey := NewMaterial("grey")
	grey.Color = NewColor(0.2, 0.2, 0.2, 1)
	black := NewMaterial("black")
	black.Color = NewColor(0, 0, 0, 1)

	shade := func(mat *Material) Color {
		return ShadeVertex(scene, mat, Vector3{}, WorldUp, Vector3{0, 0, 5})
	}

	assert.Equal(t, float32(0), shade(black).R)
	assert.Greater(t, shade(white).R, shade(grey).R)
	assert.Greater(t, shade(grey).R, float32(0))
	assert.Equal(t, float32(1), shade(white).A)

	// Without any light, everything is black.
	scene.AmbientEnergy = 0
	assert.Equal(t, float32(0), shade(white).R)

}

func TestSceneRotation(t *testing.T) {

	scene := NewScene("test")
	scene.Rotate(0, -0.1, 0)
	scene.Rotate(0.1, 0, 0)

	assert.True(t, scene.Rotation().Equals(Vector3{0.1, -0.1, 0}))
	assert.True(t, scene.Root.LocalRotation().Equals(NewMatrix4RotateFromEuler(Vector3{0.1, -0.1, 0})))

	model := NewModel(NewMesh("m"), "m")
	scene.AddModel(model)
	assert.Len(t, scene.Models(), 1)
	assert.Same(t, scene.Root, model.Parent())

	replacement := NewModel(NewMesh("n"), "n")
	scene.AddModel(replacement)
	assert.Len(t, scene.Models(), 1)
	assert.Nil(t, model.Parent())

}

func TestDebugInfoText(t *testing.T) {

	info := DebugInfo{
		FrameTime:  1500 * time.Microsecond,
		DrawnTris:  120,
		TotalTris:  300,
		DrawnDrops: 14000,
		DrawCalls:  4,
	}

	text := info.Text(60, 59.5)

	assert.Contains(t, text, "TPS: 60.0")
	assert.Contains(t, text, "FPS: 59.5")
	assert.Contains(t, text, "Render frame-time: 1.50ms")
	assert.Contains(t, text, "Draw calls: 4")
	assert.Contains(t, text, "Rendered triangles: 120/300")
	assert.Contains(t, text, "Rain drops in view: 14000")

}
