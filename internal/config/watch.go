package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the file at path whenever it changes and hands each valid
// result to onChange. The directory is watched rather than the file because
// editors usually replace files on save. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, log zerolog.Logger, onChange func(*Config)) error {
	path = filepath.Clean(expandPath(path))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadFromPath(path)
				if err != nil {
					log.Warn().Err(err).Str("path", path).Msg("config reload failed")
					continue
				}
				if err := cfg.Validate(); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("reloaded config is invalid, keeping current")
					continue
				}
				log.Info().Str("path", path).Msg("config reloaded")
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()

	return nil
}
