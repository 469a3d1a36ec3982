package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notebox/pkg/core"
)

const debounceDelay = 50 * time.Millisecond

// watchWorker owns the single fsnotify watcher of a Store and publishes
// document events to the store's broker.
type watchWorker struct {
	store     *Store
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	known     map[string]bool // document paths currently on disk; only touched by run
	cancel    context.CancelFunc
	done      chan struct{}
}

func newWatchWorker(store *Store) *watchWorker {
	return &watchWorker{
		store: store,
		known: make(map[string]bool),
		done:  make(chan struct{}),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher

	if err := w.addTree(w.store.Path, nil); err != nil {
		_ = watcher.Close()
		return err
	}

	w.debouncer = newDebouncer(debounceDelay)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	lifecycle.Go(runCtx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(fmt.Errorf("watcher panic: %w", err))
	}))
	return nil
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("watcher did not stop: %w", ctx.Err())
	}
}

func (w *watchWorker) reportError(err error) {
	w.store.logger.Error("watcher error", "error", err)
	if w.store.config.ErrorHandler != nil {
		w.store.config.ErrorHandler(err)
	}
}

// skipDir reports whether a directory below the root must not be watched.
func (w *watchWorker) skipDir(rel string) bool {
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return first == w.store.config.SystemDir || (strings.HasPrefix(first, ".") && first != ".")
}

// addTree watches dir and every directory below it. Document files found
// during the walk are recorded as known; when discovered is non-nil they
// are also passed to it, which covers files written into a directory
// before its watch was registered.
func (w *watchWorker) addTree(dir string, discovered func(docPath string)) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(w.store.Path, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && w.skipDir(rel) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
			return nil
		}

		docPath, err := w.store.docPathFor(p)
		if err != nil {
			return nil
		}
		if !w.known[docPath] {
			w.known[docPath] = true
			if discovered != nil {
				discovered(docPath)
			}
		}
		return nil
	})
}

func (w *watchWorker) mapEventType(event fsnotify.Event, docPath string) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		if w.known[docPath] {
			return core.EventModify
		}
		w.known[docPath] = true
		return core.EventCreate
	case event.Has(fsnotify.Write):
		w.known[docPath] = true
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.known, docPath)
		return core.EventDelete
	default:
		return ""
	}
}

// processFilesystemEvent handles filtering, mapping, and debouncing of filesystem events.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) {
	rel, err := filepath.Rel(w.store.Path, event.Name)
	if err != nil || w.skipDir(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			n := 0
			err := w.addTree(event.Name, func(docPath string) {
				n++
				w.sendEvent(ctx, core.Event{Type: core.EventCreate, Path: docPath, Timestamp: time.Now().Unix()})
			})
			if err != nil {
				w.reportError(err)
			}
			w.store.recordReconcile()
			w.store.logger.Debug("watching new directory", "dir", rel, "discovered", n)
			return
		}
	}

	docPath, err := w.store.docPathFor(event.Name)
	if err != nil {
		return // temp files from atomic writes and foreign files
	}

	eType := w.mapEventType(event, docPath)
	if eType == "" {
		return
	}

	w.store.cache.Delete(docPath)
	w.sendEvent(ctx, core.Event{
		Type:      eType,
		Path:      docPath,
		Timestamp: time.Now().Unix(),
	})
}

func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		if ctx.Err() != nil {
			return
		}
		w.store.broker.Publish(e)
	})
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) error {
	defer close(w.done)
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	err := w.mainEventLoop(ctx)

	// Stop accepting new events and wait for in-flight timers before the
	// broker is closed by the store.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.store.logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.reportError(wErr)
		}
	}
}
