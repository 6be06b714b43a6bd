package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the write bursts editors produce on save.
const watchDebounce = 150 * time.Millisecond

// Watch reloads path whenever it changes and hands the result to onChange until
// ctx ends. The parent directory is watched so atomic rename saves are seen.
// onChange runs on the watcher goroutine.
func Watch(ctx context.Context, path string, defaults Config, onChange func(Config, error)) error {
	if onChange == nil {
		return fmt.Errorf("watch config: onChange is required")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
				} else {
					timer.Reset(watchDebounce)
				}
				fire = timer.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(Config{}, fmt.Errorf("watch config: %w", err))
			case <-fire:
				fire = nil
				onChange(Load(target, defaults))
			}
		}
	}()
	return nil
}
