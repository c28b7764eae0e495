package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the settings file when it changes and publishes the
// result. Only the latest unread settings are kept.
type Watcher struct {
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	path    string
	current Settings
	updates chan Settings
	// overrides are reapplied to every reload so file edits do not undo them.
	overrides []Override

	debounce time.Duration
}

// NewWatcher watches path, starting from the settings already loaded with
// overrides applied. The parent directory is watched so editors that replace
// the file are picked up.
func NewWatcher(logger *zap.Logger, path string, current Settings, overrides ...Override) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		logger:    logger,
		watcher:   watcher,
		path:      abs,
		current:   current,
		updates:   make(chan Settings, 1),
		overrides: overrides,
		debounce:  100 * time.Millisecond,
	}, nil
}

// Updates delivers reloaded settings.
func (w *Watcher) Updates() <-chan Settings {
	return w.updates
}

// Start runs the watch loop until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("Watching settings", zap.String("path", w.path))

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	go func() {
		defer debounceTimer.Stop()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.shouldProcessEvent(event) {
					w.logger.Debug("Settings change detected",
						zap.String("file", event.Name),
						zap.String("op", event.Op.String()))
					debounceTimer.Reset(w.debounce)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("Watcher error", zap.Error(err))

			case <-debounceTimer.C:
				w.reload()

			case <-ctx.Done():
				w.logger.Info("Stopping settings watcher")
				return
			}
		}
	}()
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Ignoring settings change", zap.Error(err))
		return
	}
	next.Apply(w.overrides...)
	if err := next.Validate(); err != nil {
		w.logger.Warn("Ignoring settings change", zap.Error(err))
		return
	}

	if w.current.RestartRequired(next) {
		w.logger.Warn("Settings changed that only apply at startup, restart required",
			zap.Int("particles", next.Simulation.Particles),
			zap.String("backend", next.Simulation.Backend))
	}
	w.current = next
	w.logger.Info("Settings reloaded", zap.String("path", w.path))

	select {
	case <-w.updates:
	default:
	}
	w.updates <- next
}
