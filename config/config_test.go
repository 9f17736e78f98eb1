package config

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {

	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15000, cfg.Rain.Count)
	assert.Equal(t, float32(0.7), cfg.Dither.Strength)
	assert.Equal(t, float32(1), cfg.Dither.PatternScale)
	assert.Equal(t, float32(75), cfg.Camera.FieldOfView)
	assert.Equal(t, float32(0.05), cfg.Camera.Damping)
	assert.Equal(t, "assets/crow.glb", cfg.Assets.Model)
	assert.Equal(t, DefaultEnvironmentURL, cfg.Assets.Environment)

}

func TestDecodeOverridesDefaults(t *testing.T) {

	cfg := Default()

	err := Decode([]byte(`
[dither]
strength = 0.5

[rain]
count = 100
color = "#ff0000"
`), &cfg)

	require.NoError(t, err)
	assert.Equal(t, float32(0.5), cfg.Dither.Strength)
	assert.Equal(t, float32(1), cfg.Dither.PatternScale, "unset keys keep their defaults")
	assert.Equal(t, 100, cfg.Rain.Count)
	assert.Equal(t, "#ff0000", cfg.Rain.Color)
	assert.Equal(t, 1280, cfg.Window.Width)

}

func TestDecodeRejectsUnknownKeys(t *testing.T) {

	cfg := Default()
	err := Decode([]byte("[dither]\nstrenght = 0.5\n"), &cfg)
	assert.Error(t, err)

}

func TestEncodeRoundTrip(t *testing.T) {

	cfg := Default()
	cfg.Rain.Seed = 42

	data, err := cfg.Encode()
	require.NoError(t, err)

	decoded := Config{}
	require.NoError(t, Decode(data, &decoded))
	assert.Equal(t, cfg, decoded)

}

func TestValidate(t *testing.T) {

	cfg := Default()
	cfg.Window.Width = 0
	cfg.Dither.Strength = 2
	cfg.Rain.Color = "blue"
	cfg.Log.Level = "loud"
	cfg.Camera.Near = 2000

	err := cfg.Validate()
	require.Error(t, err)

	for _, fragment := range []string{"window size", "dither.strength", "rain.color", "log.level", "clip planes"} {
		assert.ErrorContains(t, err, fragment)
	}

}

func TestParseHexColor(t *testing.T) {

	c, err := ParseHexColor("#aaaaff")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xaaaaff), c)

	c, err = ParseHexColor("102030")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x102030), c)

	_, err = ParseHexColor("#abc")
	assert.Error(t, err)

	_, err = ParseHexColor("#gggggg")
	assert.Error(t, err)

}

func TestParseLevel(t *testing.T) {

	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

}

func TestFlagOverrides(t *testing.T) {

	fs := flag.NewFlagSet("rainfall", flag.ContinueOnError)
	overrides := RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"-width", "800", "-dither-strength", "0.25", "-model", "bird.glb", "-dither=false"}))

	cfg := Default()
	cfg.Window.Height = 999 // as though loaded from a file
	require.NoError(t, overrides.Apply(&cfg))

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 999, cfg.Window.Height, "flags that weren't set don't override")
	assert.Equal(t, float32(0.25), cfg.Dither.Strength)
	assert.Equal(t, "bird.glb", cfg.Assets.Model)
	assert.False(t, cfg.Dither.Enabled)

}

func TestLoad(t *testing.T) {

	path := filepath.Join(t.TempDir(), "rainfall.toml")
	require.NoError(t, os.WriteFile(path, []byte("[camera]\nfov = 60\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(60), cfg.Camera.FieldOfView)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

}

func TestWatch(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "rainfall.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dither]\nstrength = 0.7\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, path, nil, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)

	// Invalid edits are skipped; the next valid one comes through.
	require.NoError(t, os.WriteFile(path, []byte("[dither]\nstrength = 7\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[dither]\nstrength = 0.3\n"), 0o644))

	deadline := time.After(5 * time.Second)

	for {
		select {
		case cfg := <-updates:
			if cfg.Dither.Strength == 0.3 {
				cancel()
				return
			}
		case <-deadline:
			t.Fatal("no config update received")
		}
	}

}

func TestWatchKeepsFlagOverrides(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "rainfall.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 640\n"), 0o644))

	fs := flag.NewFlagSet("rainfall", flag.ContinueOnError)
	overrides := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-width", "800"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, path, overrides, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 1024\n[dither]\nstrength = 0.3\n"), 0o644))

	deadline := time.After(5 * time.Second)

	for {
		select {
		case cfg := <-updates:
			if cfg.Dither.Strength == 0.3 {
				assert.Equal(t, 800, cfg.Window.Width, "the -width flag still wins after a reload")
				return
			}
		case <-deadline:
			t.Fatal("no config update received")
		}
	}

}
