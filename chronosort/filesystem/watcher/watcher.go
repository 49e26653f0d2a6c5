package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tidyfiles/chronosort/chronosort/filesystem/options"
)

// OrganizeFunc is invoked after the watched root settles. It receives the
// root directory that changed.
type OrganizeFunc func(ctx context.Context, rootDir string) error

// RootWatcher watches a single root directory, non-recursively, and runs an
// organize pass once events for its immediate children quieten down. The
// bucket subtree is deliberately not watched: moves performed by the
// organize pass itself must not re-trigger it.
type RootWatcher struct {
	rootDir   string
	organize  OrganizeFunc
	opts      options.WatchOptions
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewRootWatcher creates a watcher for rootDir that calls organize on each
// settled batch of changes.
func NewRootWatcher(rootDir string, opts options.WatchOptions, organize OrganizeFunc) (*RootWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RootWatcher{
		// Event paths arrive cleaned from fsnotify, so the root must be
		// cleaned too or the parent comparison never matches.
		rootDir:   filepath.Clean(rootDir),
		organize:  organize,
		opts:      opts,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(opts.DebounceDelay, opts.MaxDebounceDelay, opts.QueueCapacity),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins watching and blocks until ctx is cancelled or the watcher
// fails.
func (w *RootWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.rootDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.rootDir, err)
	}

	w.wg.Add(1)
	go w.watchLoop()

	slog.Info("watching directory", "root", w.rootDir, "debounce", w.opts.DebounceDelay)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.ctx.Done():
			return nil

		case events, ok := <-w.debouncer.Events():
			if !ok {
				return nil
			}
			slog.Debug("directory settled", "root", w.rootDir, "events", len(events))
			if err := w.organize(ctx, w.rootDir); err != nil {
				return fmt.Errorf("organize pass failed for %s: %w", w.rootDir, err)
			}
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *RootWatcher) Close() error {
	w.cancel()

	err := w.watcher.Close()
	w.wg.Wait()
	w.debouncer.Close()

	slog.Info("watcher closed", "root", w.rootDir)
	return err
}

// watchLoop forwards relevant fsnotify events into the debouncer.
func (w *RootWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			event := w.convertEvent(fsEvent)
			if event == nil {
				continue
			}
			w.debouncer.Add(*event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "root", w.rootDir, "error", err)
		}
	}
}

// convertEvent maps an fsnotify event onto the watcher's own event type.
// Removes and chmods never warrant an organize pass.
func (w *RootWatcher) convertEvent(event fsnotify.Event) *Event {
	// Only immediate children of the root can be organized.
	if filepath.Dir(event.Name) != w.rootDir {
		return nil
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventWrite
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return nil
	}

	return &Event{
		Type:      eventType,
		Path:      event.Name,
		Timestamp: time.Now(),
	}
}
