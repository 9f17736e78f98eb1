package viewer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/solarlune/rainfall/assets"
	"github.com/solarlune/rainfall/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEnvironment = "sky.hdr"
	testModel       = "model.glb"
)

// memoryFetcher serves assets from memory, recording every source requested.
type memoryFetcher struct {
	files map[string][]byte

	mu       sync.Mutex
	requests []string
}

func (f *memoryFetcher) Fetch(ctx context.Context, source string, progress assets.ProgressFunc) ([]byte, error) {

	f.mu.Lock()
	f.requests = append(f.requests, source)
	f.mu.Unlock()

	data, ok := f.files[source]
	if !ok {
		return nil, os.ErrNotExist
	}

	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}

	return data, nil

}

func (f *memoryFetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// testHDR returns a flat 4x2 grey Radiance image.
func testHDR() []byte {
	data := []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 2 +X 4\n")
	for i := 0; i < 8; i++ {
		data = append(data, 128, 128, 128, 128)
	}
	return data
}

// testGLB returns a binary glTF document holding a single triangle 2 units wide and 4 units tall.
func testGLB(t testing.TB) []byte {

	doc := gltf.NewDocument()

	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 4, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: map[string]int{gltf.POSITION: positions},
		}},
	})

	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:     "crow",
		Mesh:     gltf.Index(0),
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
	})

	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	buf := &bytes.Buffer{}
	encoder := gltf.NewEncoder(buf)
	encoder.AsBinary = true
	require.NoError(t, encoder.Encode(doc))

	return buf.Bytes()

}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Assets.Environment = testEnvironment
	cfg.Assets.Model = testModel
	cfg.Rain.Count = 100
	cfg.Rain.Seed = 1
	return cfg
}

func newTestApp(t *testing.T, fetcher assets.Fetcher) *App {
	app, err := NewApp(testConfig(), fetcher, quietLogger())
	require.NoError(t, err)
	return app
}

func loadApp(t *testing.T, app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))
	return app.Pipeline.Wait(ctx)
}

func TestNewApp(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})

	assert.Equal(t, 100, app.Scene.Rain.Count())
	assert.Equal(t, float32(0.7), app.Dither.Strength)
	assert.Equal(t, float32(75), app.Camera.FieldOfView())
	assert.InDelta(t, 5, app.Camera.LocalPosition().Z, 1e-4)
	assert.Equal(t, InitialStatus, app.Status.Text)
	assert.True(t, app.Status.Visible())
	assert.Equal(t, assets.StageIdle, app.Pipeline.Stage())

	cfg := testConfig()
	cfg.Rain.Color = "not a color"
	_, err := NewApp(cfg, &memoryFetcher{}, quietLogger())
	assert.Error(t, err)

}

func TestAppLoadsEnvironmentThenModel(t *testing.T) {

	fetcher := &memoryFetcher{files: map[string][]byte{
		testEnvironment: testHDR(),
		testModel:       testGLB(t),
	}}

	app := newTestApp(t, fetcher)

	require.NoError(t, loadApp(t, app))

	assert.Equal(t, []string{testEnvironment, testModel}, fetcher.Requests())
	assert.Equal(t, assets.StageReady, app.Pipeline.Stage())

	require.NotNil(t, app.Scene.Environment)
	models := app.Scene.Models()
	require.Len(t, models, 1)
	assert.Same(t, app.Scene.Environment, models[0].Mesh.Parts[0].Material.EnvMap)

	// The triangle is 4 units tall, which fits without scaling, so the camera sits 6 units away.
	position := app.Camera.LocalPosition()
	assert.InDelta(t, 0, position.X, 1e-4)
	assert.InDelta(t, 0, position.Y, 1e-4)
	assert.InDelta(t, 6, position.Z, 1e-4)

	// The model is centered on the origin.
	center := models[0].WorldPosition()
	assert.InDelta(t, -1, center.X, 1e-4)
	assert.InDelta(t, -2, center.Y, 1e-4)

	assert.True(t, app.Status.Fading())

}

func TestAppEnvironmentFailure(t *testing.T) {

	fetcher := &memoryFetcher{files: map[string][]byte{testModel: testGLB(t)}}

	app := newTestApp(t, fetcher)

	err := loadApp(t, app)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assets.ErrEnvironmentLoad))

	assert.Equal(t, []string{testEnvironment}, fetcher.Requests(), "the model is never fetched")
	assert.Equal(t, assets.ErrorText, app.Status.Text)
	assert.True(t, app.Status.Visible())
	assert.Nil(t, app.Scene.Environment)
	assert.Empty(t, app.Scene.Models())

}

func TestAppModelDecodeFailure(t *testing.T) {

	fetcher := &memoryFetcher{files: map[string][]byte{
		testEnvironment: testHDR(),
		testModel:       []byte("not a model"),
	}}

	app := newTestApp(t, fetcher)

	err := loadApp(t, app)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assets.ErrModelLoad))
	assert.Equal(t, assets.StageError, app.Pipeline.Stage())
	assert.Equal(t, assets.ErrorText, app.Status.Text)
	assert.NotNil(t, app.Scene.Environment, "the environment stays in place")
	assert.Empty(t, app.Scene.Models())

}

func TestAppTick(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})

	before := append([]float32(nil), app.Scene.Rain.Positions...)

	app.Tick(1.0 / 60)

	moved := 0
	for i := 1; i < len(before); i += 3 {
		if app.Scene.Rain.Positions[i] != before[i] {
			moved++
		}
	}
	assert.Equal(t, app.Scene.Rain.Count(), moved, "every drop falls each tick")
	assert.True(t, app.Scene.Rain.Dirty())

}

func TestAppConfigReload(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})

	updates := make(chan config.Config, 1)
	app.WatchConfig(updates)

	cfg := testConfig()
	cfg.Dither.Strength = 0.3
	cfg.Dither.PatternScale = 2
	cfg.Dither.Enabled = false
	cfg.Rain.Color = "#ff0000"
	cfg.Rain.Count = 5 // Not live-tunable
	updates <- cfg

	app.Tick(1.0 / 60)

	assert.Equal(t, float32(0.3), app.Dither.Strength)
	assert.Equal(t, float32(2), app.Dither.PatternScale)
	assert.False(t, app.Config.Dither.Enabled)
	assert.Equal(t, float32(1), app.Scene.Rain.Settings.Color.R)
	assert.Equal(t, float32(0), app.Scene.Rain.Settings.Color.B)
	assert.Equal(t, 100, app.Scene.Rain.Count())

	close(updates)
	app.Tick(1.0 / 60)
	assert.Nil(t, app.configUpdates)

}

func TestHandleKey(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})

	require.NoError(t, app.HandleKey(ebiten.KeyArrowLeft))
	assert.InDelta(t, -0.1, app.Scene.Rotation().Y, 1e-6)

	require.NoError(t, app.HandleKey(ebiten.KeyArrowRight))
	require.NoError(t, app.HandleKey(ebiten.KeyArrowRight))
	assert.InDelta(t, 0.1, app.Scene.Rotation().Y, 1e-6)

	require.NoError(t, app.HandleKey(ebiten.KeyArrowUp))
	assert.InDelta(t, -0.1, app.Scene.Rotation().X, 1e-6)

	require.NoError(t, app.HandleKey(ebiten.KeyArrowDown))
	require.NoError(t, app.HandleKey(ebiten.KeyArrowDown))
	assert.InDelta(t, 0.1, app.Scene.Rotation().X, 1e-6)

	require.NoError(t, app.HandleKey(ebiten.KeyEqual))
	assert.InDelta(t, 4.7, app.Camera.LocalPosition().Z, 1e-4)

	require.NoError(t, app.HandleKey(ebiten.KeyNumpadSubtract))
	require.NoError(t, app.HandleKey(ebiten.KeyMinus))
	assert.InDelta(t, 5.3, app.Camera.LocalPosition().Z, 1e-4)

	require.NoError(t, app.HandleKey(ebiten.KeyF12))
	assert.True(t, app.screenshotPending)

	require.NoError(t, app.HandleKey(ebiten.KeyF1))
	assert.True(t, app.ShowDebug)
	require.NoError(t, app.HandleKey(ebiten.KeyF1))
	assert.False(t, app.ShowDebug)

	// Unbound keys do nothing.
	require.NoError(t, app.HandleKey(ebiten.KeyQ))

	assert.ErrorIs(t, app.HandleKey(ebiten.KeyEscape), ebiten.Termination)

}

func TestScreenshotImage(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})
	app.ScreenshotDir = t.TempDir()

	frame := image.NewRGBA(image.Rect(0, 0, 16, 8))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.RGBA{200, 200, 200, 255}), image.Point{}, draw.Src)

	app.Config.Dither.Enabled = true
	dithered, ok := app.screenshotImage(frame).(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, frame.Bounds(), dithered.Bounds())
	assert.Equal(t, app.Dither.ApplyImage(frame).Pix, dithered.Pix)

	app.Config.Dither.Enabled = false
	assert.Same(t, frame, app.screenshotImage(frame))

	require.NoError(t, app.saveScreenshot(dithered))

	entries, err := os.ReadDir(app.ScreenshotDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	f, err := os.Open(filepath.Join(app.ScreenshotDir, entries[0].Name()))
	require.NoError(t, err)
	defer f.Close()

	saved, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), saved.Bounds())

}

func TestRotationIsUnbounded(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})

	for i := 0; i < 100; i++ {
		require.NoError(t, app.Perform(ActionRotateRight))
	}

	assert.InDelta(t, 10, app.Scene.Rotation().Y, 1e-3)

}

func TestActionForKeyCode(t *testing.T) {

	cases := map[int]Action{
		37:  ActionRotateLeft,
		39:  ActionRotateRight,
		38:  ActionRotateUp,
		40:  ActionRotateDown,
		107: ActionZoomIn,
		187: ActionZoomIn,
		109: ActionZoomOut,
		189: ActionZoomOut,
		65:  ActionNone,
	}

	for code, action := range cases {
		assert.Equal(t, action, ActionForKeyCode(code), "key code %d", code)
	}

}

func TestResize(t *testing.T) {

	app := newTestApp(t, &memoryFetcher{})

	app.Resize(800, 600, 1)
	assert.InDelta(t, 800.0/600.0, app.Camera.AspectRatio(), 1e-6)

	app.Resize(1600, 900, 2)

	assert.InDelta(t, 16.0/9.0, app.Camera.AspectRatio(), 1e-6)

	w, h := app.Camera.TextureSize()
	assert.Equal(t, 3200, w)
	assert.Equal(t, 1800, h)

	assert.Equal(t, float32(1600), app.Dither.Width)
	assert.Equal(t, float32(900), app.Dither.Height)

}
