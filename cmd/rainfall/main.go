// Command rainfall shows an environment-mapped model in the rain, drawn in dithered black and white.
//
// Arrow keys rotate the scene, +/- move the camera, and the mouse orbits (left drag), pans (right drag) and zooms
// (wheel). F4 toggles fullscreen, F12 saves a screenshot, and Escape quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/rainfall/assets"
	"github.com/solarlune/rainfall/config"
	"github.com/solarlune/rainfall/viewer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rainfall:", err)
		os.Exit(1)
	}
}

func run(args []string) error {

	fs := flag.NewFlagSet("rainfall", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	printConfig := fs.Bool("print-config", false, "print the effective configuration as TOML and exit")
	overrides := config.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg := config.Default()

	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if err := overrides.Apply(&cfg); err != nil {
		return fmt.Errorf("applying flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if *printConfig {
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fetcher := &assets.SchemeFetcher{
		HTTP: &assets.HTTPFetcher{},
		File: assets.NewFileFetcher(cfg.Assets.Root),
	}

	app, err := viewer.NewApp(cfg, fetcher, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch {
		if *configPath == "" {
			logger.Warn("watch is enabled, but there's no config file to watch")
		} else {
			updates, err := config.Watch(ctx, *configPath, overrides, logger)
			if err != nil {
				return err
			}
			app.WatchConfig(updates)
		}
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	logger.Info("starting", "environment", cfg.Assets.Environment, "model", cfg.Assets.Model, "drops", cfg.Rain.Count)

	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}

	return nil

}
