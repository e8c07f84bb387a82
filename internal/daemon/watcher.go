package daemon

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
	"git.home.luguber.info/inful/apigen/internal/logfields"
)

// InventoryWatcher watches stub inventory files and requests a rebuild when
// one changes. Parent directories are watched rather than the files
// themselves, so editors that replace files via rename are still observed.
type InventoryWatcher struct {
	watcher   *fsnotify.Watcher
	files     map[string]struct{}
	debouncer *Debouncer
}

func NewInventoryWatcher(paths []string, debouncer *Debouncer) (*InventoryWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.CategoryDaemon, apierrors.SeverityFatal,
			"failed to create file watcher")
	}

	w := &InventoryWatcher{
		watcher:   watcher,
		files:     make(map[string]struct{}, len(paths)),
		debouncer: debouncer,
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, apierrors.Wrap(err, apierrors.CategoryDaemon, apierrors.SeverityFatal,
				"failed to resolve inventory path").WithContext("path", p)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, apierrors.Wrap(err, apierrors.CategoryDaemon, apierrors.SeverityFatal,
				"failed to watch directory").WithContext("dir", dir)
		}
	}
	return w, nil
}

// Run forwards relevant filesystem events to the debouncer until the
// context is cancelled.
func (w *InventoryWatcher) Run(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Inventory changed", logfields.Path(event.Name), "op", event.Op.String())
			w.debouncer.Request("inventory: " + filepath.Base(event.Name))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}

func (w *InventoryWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
