package htpasswd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/realmkit/htrealm/internal/logger"
)

const watchDebounce = 200 * time.Millisecond

// Watch reloads the credential file when it changes on disk, so entries are
// picked up without waiting for the next authentication attempt. The watcher
// only nudges EnsureFresh; the modification-time check still decides whether
// a reload actually happens. Watching the directory rather than the file
// survives editors and htpasswd itself replacing the file by rename.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	go s.watchLoop(ctx, watcher)
	logger.Info("watching %s for credential changes", s.path)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(s.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// Debounce bursts of events from a single rewrite.
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("htpasswd watcher: %v", err)
		case <-timerCh:
			timerCh = nil
			timer = nil
			if err := s.EnsureFresh(); err != nil {
				logger.Error("htpasswd reload after change failed: %v", err)
			} else {
				logger.Debug("htpasswd reloaded, %d entries", s.Len())
			}
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}
