// Package watch rebuilds the site when the document, templates, or
// static assets change, and tells connected browsers to reload.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/logfields"
)

// Watcher drives rebuilds from filesystem events.
type Watcher struct {
	cfg *config.Config
	log *slog.Logger
	fsw *fsnotify.Watcher
	deb *Debouncer
}

// New sets up watches on the document's directory, the templates
// directory, and the static directory. The build directory is never
// watched; writing output must not retrigger builds.
func New(cfg *config.Config, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryWatch, errors.SeverityFatal, "creating filesystem watcher")
	}

	w := &Watcher{
		cfg: cfg,
		log: log,
		fsw: fsw,
		deb: NewDebouncer(150*time.Millisecond, 2*time.Second),
	}

	if err := fsw.Add(cfg.RootDir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, errors.CategoryWatch, errors.SeverityFatal, "watching %s", cfg.RootDir)
	}
	for _, dir := range []string{cfg.TemplatesDir, cfg.StaticDir} {
		if err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close releases the filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks, invoking rebuild after each coalesced burst of changes.
// A failing rebuild is logged and watching continues; the author fixes
// the document and saves again.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	go w.deb.Run(ctx)

	w.log.Info("watching for changes", logfields.Path(w.cfg.RootDir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			// New directories under templates or static need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
				}
			}
			w.deb.Notify()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logfields.Error(err))

		case <-w.deb.Triggers():
			w.log.Info("change detected, rebuilding")
			if err := rebuild(ctx); err != nil {
				w.log.Error("rebuild failed", logfields.Error(err))
			}
		}
	}
}

// ignored filters out the build directory and editor junk.
func (w *Watcher) ignored(name string) bool {
	if within(w.cfg.BuildDir, name) {
		return true
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	return false
}

func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) || (err == nil && !info.IsDir()) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.CategoryWatch, errors.SeverityFatal, "reading %s", root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return errors.Wrapf(addErr, errors.CategoryWatch, errors.SeverityFatal, "watching %s", path)
		}
		return nil
	})
}

func within(dir, name string) bool {
	rel, err := filepath.Rel(dir, name)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
