package indexer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mwiater/docqa/internal/docindex"
	"github.com/mwiater/docqa/internal/logging"
)

// Watch re-indexes supported files in dir when they are created or written,
// once they have been quiet for the configured debounce interval. It
// returns when ctx ends. onResult, if set, receives every result.
func (ix *Indexer) Watch(ctx context.Context, dir string, onResult func(Result)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	ix.status("[WATCH] Watching %s for changes", dir)

	pending := make(map[string]struct{})
	var (
		timer  *time.Timer
		timerC <-chan time.Time
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

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, supported := docindex.DetectFormat(event.Name); !supported {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(ix.cfg.Debounce)
			} else {
				timer.Reset(ix.cfg.Debounce)
			}
			timerC = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.LogEvent("[WATCH] watcher error: %v", err)

		case <-timerC:
			timerC = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			clear(pending)
			sort.Strings(paths)

			for _, path := range paths {
				res, err := ix.IndexFile(ctx, path)
				if err != nil && ctx.Err() != nil {
					return nil
				}
				if onResult != nil {
					onResult(res)
				}
			}
		}
	}
}
