package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 50 * time.Millisecond

// Watch reloads the store whenever the preference file changes on disk,
// until ctx is cancelled
func (s *Store) Watch(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and our own writes replace the file
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	name := filepath.Base(s.path)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("preference watcher error", "err", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(evt.Name) != name {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
				timerCh = timer.C
			}
		case <-timerCh:
			timer, timerCh = nil, nil
			if err := s.Reload(); err != nil {
				s.logger.Warn("preference reload failed", "err", err)
			}
		}
	}
}
