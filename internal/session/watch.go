package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettleDelay coalesces the write+rename event pair a single atomic
// persist produces into one reload.
const watchSettleDelay = 50 * time.Millisecond

// Watch follows the shared state file and publishes on the bus whenever
// another process changes the session. Blocks until ctx is done. This is the
// cross-process half of the event bus; in-process changes go through
// Set/Clear directly.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create state watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: renames replace the inode and a
	// file-level watch would silently die after the first update.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch state directory: %w", err)
	}

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != stateFileName {
				continue
			}
			if !event.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(watchSettleDelay)
				settleC = settle.C
			} else {
				settle.Reset(watchSettleDelay)
			}

		case <-settleC:
			settle = nil
			settleC = nil
			if s.reloadFromDisk() {
				s.log.Debug("Session changed by another process")
				s.bus.Publish()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("State watcher error", "error", err)
		}
	}
}
