package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-ingests a source CSV whenever one is dropped into or rewritten
// under the data directory.
type Watcher struct {
	log      *zap.Logger
	loader   *Loader
	dir      string
	settle   time.Duration // wait after an event so the writer can finish
}

func NewWatcher(log *zap.Logger, loader *Loader, dir string) *Watcher {
	return &Watcher{
		log:    log,
		loader: loader,
		dir:    dir,
		settle: 500 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled or the underlying watch fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info("ingest_watching", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("ingest_watch_stopped")
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".csv") {
				continue
			}
			time.Sleep(w.settle)
			if err := w.loader.LoadFile(ctx, ev.Name); err != nil {
				w.log.Warn("ingest_watch_load_error", zap.String("path", ev.Name), zap.Error(err))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("ingest_watch_error", zap.Error(err))
		}
	}
}
