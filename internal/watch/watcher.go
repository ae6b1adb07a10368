// Package watch reruns the build whenever the installer sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ysouyno/isbld/internal/logfields"
)

// DefaultDebounce is how long the sources must stay quiet before a run starts.
const DefaultDebounce = 2 * time.Second

// Trigger performs one full build. Its error is logged and watching continues.
type Trigger func(ctx context.Context) error

// Filter reports whether a change to path should cause a rebuild.
type Filter func(path string) bool

// Watcher monitors directories and runs Trigger once per settled burst of changes.
// Runs never overlap: changes made while a run is in progress schedule the next one.
type Watcher struct {
	dirs     []string
	filter   Filter
	debounce time.Duration
	trigger  Trigger
	watcher  *fsnotify.Watcher
}

// New creates a watcher over dirs. A zero debounce selects DefaultDebounce and
// a nil filter accepts every path.
func New(dirs []string, debounce time.Duration, filter Filter, trigger Trigger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve watch path: %w", err)
		}
		if err := fw.Add(abs); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", abs, err)
		}
	}
	return &Watcher{
		dirs:     dirs,
		filter:   filter,
		debounce: debounce,
		trigger:  trigger,
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is cancelled, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()
	slog.Info("Watching for source changes", slog.Any("dirs", w.dirs), slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) || !w.filter(event.Name) {
				continue
			}
			slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))
		case <-timer.C:
			slog.Info("Sources settled, rebuilding")
			if err := w.trigger(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func relevant(e fsnotify.Event) bool {
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename)
}

// SourceFilter accepts InstallScript sources (.rul, .h) and the files named
// in names (compared by base name, case-insensitively). Compiler output such
// as Setup.inx and the built media never match.
func SourceFilter(names ...string) Filter {
	return func(path string) bool {
		base := filepath.Base(path)
		switch strings.ToLower(filepath.Ext(base)) {
		case ".rul", ".h":
			return true
		}
		for _, n := range names {
			if n != "" && strings.EqualFold(base, filepath.Base(n)) {
				return true
			}
		}
		return false
	}
}
