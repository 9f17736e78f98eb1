// Package viewer hosts the rain scene in an Ebitengine window: it owns the scene, camera, controls and asset pipeline,
// and implements ebiten.Game.
package viewer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/rainfall"
	"github.com/solarlune/rainfall/assets"
	"github.com/solarlune/rainfall/config"
	"github.com/solarlune/rainfall/hdr"
)

// InitialStatus is shown until the model starts reporting progress.
const InitialStatus = "Loading..."

// App is the viewer: a rotating, environment-mapped model in the rain, seen through a dithering filter.
type App struct {
	Config config.Config

	Scene    *rainfall.Scene
	Camera   *rainfall.Camera
	Renderer *rainfall.Renderer
	Dither   *rainfall.DitherFilter
	Controls *OrbitControls
	Status   *StatusOverlay
	Pipeline *assets.Pipeline

	// ScreenshotDir is the directory F12 screenshots are saved to.
	ScreenshotDir string
	// ShowDebug draws the renderer's frame statistics; F1 toggles it.
	ShowDebug bool

	logger        *slog.Logger
	configUpdates <-chan config.Config

	keys              []ebiten.Key
	screenshotPending bool

	width, height int
	pixelRatio    float32
}

// NewApp creates the viewer for the configuration given. Assets are fetched through fetcher once Start is called.
func NewApp(cfg config.Config, fetcher assets.Fetcher, logger *slog.Logger) (*App, error) {

	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		Config:        cfg,
		Scene:         rainfall.NewScene("rainfall"),
		Camera:        rainfall.NewCamera(cfg.Window.Width, cfg.Window.Height),
		Renderer:      rainfall.NewRenderer(),
		Dither:        rainfall.NewDitherFilter(cfg.Window.Width, cfg.Window.Height),
		Status:        NewStatusOverlay(InitialStatus),
		ScreenshotDir: ".",
		logger:        logger.With("component", "viewer"),
		width:         cfg.Window.Width,
		height:        cfg.Window.Height,
		pixelRatio:    1,
	}

	app.Camera.SetFieldOfView(cfg.Camera.FieldOfView)
	app.Camera.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)
	app.Camera.SetLocalPosition(0, 0, 5)

	app.Controls = NewOrbitControls(app.Camera, cfg.Camera.Damping)
	app.Controls.Sync(rainfall.Vector3{})

	rainColor, err := config.ParseHexColor(cfg.Rain.Color)
	if err != nil {
		return nil, fmt.Errorf("rain color: %w", err)
	}

	settings := rainfall.NewRainSettings()
	settings.Count = cfg.Rain.Count
	settings.Radius = cfg.Rain.Radius
	settings.SpawnHeight.Set(cfg.Rain.MinHeight, cfg.Rain.MaxHeight)
	settings.Speed.Set(cfg.Rain.MinSpeed, cfg.Rain.MaxSpeed)
	settings.FloorY = cfg.Rain.Floor
	settings.Color = rainfall.NewColorFromHexInt(rainColor)
	settings.Opacity = cfg.Rain.Opacity
	settings.Size = cfg.Rain.Size

	var rng *rand.Rand
	if cfg.Rain.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Rain.Seed))
	}

	app.Scene.SetRain(rainfall.NewRainField(settings, rng))

	app.applyDither(cfg.Dither)

	app.Pipeline = assets.NewPipeline(fetcher, app, app.Status, logger, cfg.Assets.Environment, cfg.Assets.Model)

	return app, nil

}

// Start begins loading the environment map and then the model. Cancelling ctx abandons the loads.
func (app *App) Start(ctx context.Context) error {
	return app.Pipeline.Start(ctx)
}

// WatchConfig makes the App apply configurations received on updates at the start of each tick. Only the dither
// settings and the rain's color and opacity take effect live.
func (app *App) WatchConfig(updates <-chan config.Config) {
	app.configUpdates = updates
}

// EnvironmentLoaded decodes the HDR panorama and uses it as the Scene's background and reflection source.
func (app *App) EnvironmentLoaded(data []byte) error {

	img, err := hdr.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	app.Scene.SetEnvironment(rainfall.NewEnvironmentMap(img, app.Config.Assets.Exposure))

	app.logger.Info("environment map ready", "width", img.Width, "height", img.Height)

	return nil

}

// ModelLoaded decodes the GLB model, fits it to the view, and adds it to the Scene.
func (app *App) ModelLoaded(data []byte) error {

	model, err := rainfall.LoadGLTFData(data)
	if err != nil {
		return err
	}

	fit := rainfall.FitModel(model, app.Config.Camera.MaxModelSize, app.Scene.Environment, 1, app.Camera, app.Config.Camera.DistanceFactor)

	app.Scene.AddModel(model)
	app.Controls.Sync(rainfall.Vector3{})

	triangles := 0
	for _, m := range app.Scene.Models() {
		triangles += m.Mesh.TriangleCount()
	}

	app.logger.Info("model ready", "triangles", triangles, "scale", fit.Scale, "cameraDistance", fit.CameraDistance)

	return nil

}

func (app *App) applyDither(cfg config.Dither) {
	app.Dither.Strength = cfg.Strength
	app.Dither.PatternScale = cfg.PatternScale
}

// applyConfig applies the live-tunable parts of a reloaded configuration.
func (app *App) applyConfig(cfg config.Config) {

	app.Config.Dither = cfg.Dither
	app.applyDither(cfg.Dither)

	if hex, err := config.ParseHexColor(cfg.Rain.Color); err == nil {
		app.Config.Rain.Color = cfg.Rain.Color
		app.Scene.Rain.Settings.Color = rainfall.NewColorFromHexInt(hex)
	}

	app.Config.Rain.Opacity = cfg.Rain.Opacity
	app.Scene.Rain.Settings.Opacity = cfg.Rain.Opacity

	app.logger.Info("config reloaded", "ditherEnabled", cfg.Dither.Enabled, "ditherStrength", cfg.Dither.Strength, "rainColor", cfg.Rain.Color)

}

func (app *App) pollConfig() {
	for {
		select {
		case cfg, ok := <-app.configUpdates:
			if !ok {
				app.configUpdates = nil
				return
			}
			app.applyConfig(cfg)
		default:
			return
		}
	}
}

// Tick runs the simulation for one frame without reading input: pending config changes and asset loads are applied,
// then the scene steps forward by dt seconds.
func (app *App) Tick(dt float32) {
	app.poll()
	app.step(dt)
}

func (app *App) poll() {
	app.pollConfig()
	app.Pipeline.Poll()
}

// step eases the controls, lets the rain fall, and fades the status overlay by dt seconds.
func (app *App) step(dt float32) {
	app.Controls.Update()
	app.Scene.Rain.Advance()
	app.Status.Update(dt)
}

// Update implements ebiten.Game.
func (app *App) Update() error {

	app.poll()

	app.keys = inpututil.AppendJustPressedKeys(app.keys[:0])
	for _, key := range app.keys {
		if err := app.HandleKey(key); err != nil {
			return err
		}
	}

	mx, my := ebiten.CursorPosition()
	_, wheelY := ebiten.Wheel()

	_, h := app.Camera.TextureSize()

	app.Controls.HandleMouse(MouseState{
		X:      mx,
		Y:      my,
		Left:   ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Right:  ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		WheelY: wheelY,
	}, h)

	app.step(float32(1.0 / float64(ebiten.TPS())))

	return nil

}

// Draw implements ebiten.Game.
func (app *App) Draw(screen *ebiten.Image) {

	app.Renderer.Render(app.Scene, app.Camera)

	frame := app.Camera.ColorTexture()

	if app.Config.Dither.Enabled {
		app.Dither.Apply(screen, frame)
	} else {
		screen.DrawImage(frame, nil)
	}

	if app.screenshotPending {
		app.screenshotPending = false
		if err := app.saveScreenshot(app.screenshotImage(readImage(frame))); err != nil {
			app.logger.Error("saving screenshot", "err", err)
		}
	}

	app.Status.Draw(screen, float64(app.pixelRatio))

	if app.ShowDebug {
		app.drawDebug(screen)
	}

}

// Layout implements ebiten.Game. The screen is laid out at the physical resolution, so the scene is rendered at full
// detail on high-DPI displays.
func (app *App) Layout(outsideWidth, outsideHeight int) (int, int) {

	scale := float32(ebiten.Monitor().DeviceScaleFactor())
	if scale <= 0 {
		scale = 1
	}

	app.Resize(outsideWidth, outsideHeight, scale)

	return app.Camera.TextureSize()

}

func (app *App) drawDebug(screen *ebiten.Image) {
	txt := app.Renderer.DebugInfo.Text(ebiten.ActualTPS(), ebiten.ActualFPS())
	scale := float64(app.pixelRatio)
	_, h := measureTextBox(txt)
	y := float64(screen.Bounds().Dy()) - h*scale
	drawTextBox(screen, txt, 0, y, scale, 1, app.Status.TextColor, app.Status.BackgroundColor)
}

// readImage copies the pixels of a rendered frame back from the GPU.
func readImage(frame *ebiten.Image) *image.RGBA {
	bounds := frame.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	frame.ReadPixels(img.Pix)
	return img
}

// screenshotImage returns what a screenshot of frame shows: the dithered image when dithering is on, and the frame
// itself otherwise.
func (app *App) screenshotImage(frame image.Image) image.Image {
	if app.Config.Dither.Enabled {
		return app.Dither.ApplyImage(frame)
	}
	return frame
}

func (app *App) saveScreenshot(img image.Image) error {

	path := filepath.Join(app.ScreenshotDir, "screenshot "+time.Now().Format("2006-01-02 15-04-05")+".png")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return err
	}

	app.logger.Info("saved screenshot", "path", path)

	return f.Close()

}
