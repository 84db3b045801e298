package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the given config file and delivers a freshly read Config
// on every change. Configs that fail to read or validate are logged and
// skipped. The returned channel is closed when stop is closed.
//
// The parent directory is watched rather than the file itself, so the
// common editor save dance (write temp file, rename over the original)
// is picked up as well.
func Watch(cfile string, stop <-chan struct{}) (<-chan *Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("can't create config watcher: %w", err)
	}

	dir := filepath.Dir(cfile)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("can't watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(cfile)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan *Config, 1)
	go func() {
		defer watcher.Close()
		defer close(out)
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || name != target {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				conf, err := ReadConfig(cfile)
				if err != nil {
					slog.Warn("Ignoring config change", "error", err)
					continue
				}
				slog.Info("Config file changed, reloading", "file", cfile)
				// Only the latest config matters; drop a stale pending one.
				select {
				case <-out:
				default:
				}
				out <- conf
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			}
		}
	}()
	return out, nil
}
