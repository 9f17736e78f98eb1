// Package config loads the viewer's settings from a TOML file, with command-line flags taking precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultEnvironmentURL is the panorama loaded when no other environment map is configured.
const DefaultEnvironmentURL = "https://dl.polyhaven.org/file/ph-assets/HDRIs/hdr/1k/kloofendal_48d_partly_cloudy_1k.hdr"

type Window struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	Fullscreen bool   `toml:"fullscreen"`
}

type Assets struct {
	Environment string  `toml:"environment"` // URL or path of the .hdr environment map
	Model       string  `toml:"model"`       // URL or path of the .glb model
	Root        string  `toml:"root"`        // Directory relative paths are resolved against
	Exposure    float32 `toml:"exposure"`
}

type Camera struct {
	FieldOfView    float32 `toml:"fov"`
	Near           float32 `toml:"near"`
	Far            float32 `toml:"far"`
	MaxModelSize   float32 `toml:"max_model_size"`  // Models larger than this are scaled down to it
	DistanceFactor float32 `toml:"distance_factor"` // The camera sits this many model-sizes away
	Damping        float32 `toml:"damping"`         // Orbit damping factor; 0 disables damping
	ZoomStep       float32 `toml:"zoom_step"`       // Distance the +/- keys move the camera
	RotateStep     float32 `toml:"rotate_step"`     // Radians the arrow keys rotate the scene
}

type Rain struct {
	Count     int     `toml:"count"`
	Radius    float32 `toml:"radius"`
	MinHeight float32 `toml:"min_height"`
	MaxHeight float32 `toml:"max_height"`
	Floor     float32 `toml:"floor"`
	MinSpeed  float32 `toml:"min_speed"`
	MaxSpeed  float32 `toml:"max_speed"`
	Color     string  `toml:"color"` // "#rrggbb"
	Opacity   float32 `toml:"opacity"`
	Size      float32 `toml:"size"`
	Seed      int64   `toml:"seed"` // 0 picks a random seed
}

type Dither struct {
	Enabled      bool    `toml:"enabled"`
	Strength     float32 `toml:"strength"`
	PatternScale float32 `toml:"pattern_scale"`
}

type Log struct {
	Level string `toml:"level"` // debug, info, warn, or error
}

// Config holds every user-tunable setting.
type Config struct {
	Window Window `toml:"window"`
	Assets Assets `toml:"assets"`
	Camera Camera `toml:"camera"`
	Rain   Rain   `toml:"rain"`
	Dither Dither `toml:"dither"`
	Log    Log    `toml:"log"`

	// Watch reloads the config file when it changes; dither and rain color settings apply live.
	Watch bool `toml:"watch"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Rainfall"},
		Assets: Assets{
			Environment: DefaultEnvironmentURL,
			Model:       "assets/crow.glb",
			Root:        ".",
			Exposure:    1,
		},
		Camera: Camera{
			FieldOfView:    75,
			Near:           0.1,
			Far:            1000,
			MaxModelSize:   5,
			DistanceFactor: 1.5,
			Damping:        0.05,
			ZoomStep:       0.3,
			RotateStep:     0.1,
		},
		Rain: Rain{
			Count:     15000,
			Radius:    20,
			MinHeight: 30,
			MaxHeight: 45,
			Floor:     -20,
			MinSpeed:  0.15,
			MaxSpeed:  0.45,
			Color:     "#aaaaff",
			Opacity:   0.6,
			Size:      0.1,
		},
		Dither: Dither{Enabled: true, Strength: 0.7, PatternScale: 1},
		Log:    Log{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults. Settings missing from the file keep their default values.
func Load(path string) (Config, error) {

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil

}

// Decode unmarshals TOML data over cfg. Unknown keys are an error, so typos don't go unnoticed.
func Decode(data []byte, cfg *Config) error {

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("decoding config: %s", strict.String())
		}
		return fmt.Errorf("decoding config: %w", err)
	}

	return nil

}

// Encode returns the configuration as TOML.
func (cfg Config) Encode() ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate checks the configuration for values the viewer can't run with, returning every problem found.
func (cfg Config) Validate() error {

	var errs []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(cfg.Window.Width > 0 && cfg.Window.Height > 0, "window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	check(cfg.Assets.Environment != "", "assets.environment must be set")
	check(cfg.Assets.Model != "", "assets.model must be set")
	check(cfg.Assets.Exposure > 0, "assets.exposure must be positive, got %v", cfg.Assets.Exposure)
	check(cfg.Camera.FieldOfView > 0 && cfg.Camera.FieldOfView < 180, "camera.fov must be between 0 and 180, got %v", cfg.Camera.FieldOfView)
	check(cfg.Camera.Near > 0 && cfg.Camera.Near < cfg.Camera.Far, "camera clip planes must satisfy 0 < near < far, got %v and %v", cfg.Camera.Near, cfg.Camera.Far)
	check(cfg.Camera.MaxModelSize > 0, "camera.max_model_size must be positive, got %v", cfg.Camera.MaxModelSize)
	check(cfg.Camera.Damping >= 0 && cfg.Camera.Damping <= 1, "camera.damping must be between 0 and 1, got %v", cfg.Camera.Damping)
	check(cfg.Rain.Count >= 0, "rain.count can't be negative, got %d", cfg.Rain.Count)
	check(cfg.Rain.MinHeight <= cfg.Rain.MaxHeight, "rain.min_height (%v) exceeds rain.max_height (%v)", cfg.Rain.MinHeight, cfg.Rain.MaxHeight)
	check(cfg.Rain.Floor < cfg.Rain.MinHeight, "rain.floor (%v) must be below rain.min_height (%v)", cfg.Rain.Floor, cfg.Rain.MinHeight)
	check(cfg.Rain.MinSpeed > 0 && cfg.Rain.MinSpeed <= cfg.Rain.MaxSpeed, "rain speeds must satisfy 0 < min_speed <= max_speed")
	check(cfg.Rain.Opacity >= 0 && cfg.Rain.Opacity <= 1, "rain.opacity must be between 0 and 1, got %v", cfg.Rain.Opacity)
	check(cfg.Dither.Strength >= 0 && cfg.Dither.Strength <= 1, "dither.strength must be between 0 and 1, got %v", cfg.Dither.Strength)
	check(cfg.Dither.PatternScale > 0, "dither.pattern_scale must be positive, got %v", cfg.Dither.PatternScale)

	if _, err := ParseHexColor(cfg.Rain.Color); err != nil {
		errs = append(errs, fmt.Errorf("rain.color: %w", err))
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)

}

// ParseHexColor parses a "#rrggbb" (or "rrggbb") color into a 0xRRGGBB integer.
func ParseHexColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("%q isn't a #rrggbb color", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q isn't a #rrggbb color", s)
	}
	return uint32(v), nil
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
