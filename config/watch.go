package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it's written to or replaced, sending each valid result on the returned
// channel. Command-line overrides, if not nil, are applied to every reload so that flags keep winning over the file.
// Invalid edits are logged and skipped. The watcher stops, closing the channel, when ctx is done.
func Watch(ctx context.Context, path string, overrides *Overrides, logger *slog.Logger) (<-chan Config, error) {

	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	// Editors often save by replacing the file, so the directory is watched rather than the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	updates := make(chan Config, 1)

	go func() {

		defer close(updates)
		defer watcher.Close()

		for {
			select {

			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := Load(abs)
				if err == nil && overrides != nil {
					err = overrides.Apply(&cfg)
				}
				if err == nil {
					err = cfg.Validate()
				}
				if err != nil {
					logger.Warn("ignoring invalid config change", "path", path, "err", err)
					continue
				}

				logger.Info("config reloaded", "path", path)

				// Only the newest config matters; replace one the consumer hasn't picked up yet.
				select {
				case <-updates:
				default:
				}
				updates <- cfg

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "err", err)

			}
		}

	}()

	return updates, nil

}
