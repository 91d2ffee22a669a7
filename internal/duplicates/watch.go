package duplicates

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"comicdesk/internal/datadir"
	"comicdesk/internal/logging"
)

// DefaultDebounce coalesces bursts of report writes into one signal.
const DefaultDebounce = 250 * time.Millisecond

// WatchReports signals on the returned channel whenever a .json file in the
// report directory is created, written, renamed, or removed. Bursts within
// debounce collapse into one signal. The channel closes when ctx is done.
// Callers rescan with Reader.List on each signal.
func WatchReports(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger) (<-chan struct{}, error) {
	logger = logging.NewComponentLogger(logger, "duplicates-watch")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	dir := datadir.New(root).ReportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		defer watcher.Close()

		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				timer.Reset(debounce)
			case <-timer.C:
				select {
				case signals <- struct{}{}:
				default:
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.WarnWithContext(logger, "report watcher error", "duplicates_watch_error",
					logging.String(logging.FieldPath, dir),
					logging.Error(werr),
					logging.String(logging.FieldImpact, "report changes may be missed until the next manual refresh"))
			}
		}
	}()

	logger.Debug("watching duplicate reports", logging.String(logging.FieldPath, dir))
	return signals, nil
}
