package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ManifestLoader reads the current manifest, usually from the config file.
type ManifestLoader func() (Manifest, error)

// ManifestWatcher installs a new worker whenever the watched config file
// yields a manifest with a different generation name.
type ManifestWatcher struct {
	path     string
	load     ManifestLoader
	agent    *Agent
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	stopOnce sync.Once
	done     chan struct{}
}

// NewManifestWatcher prepares a watcher for path. Call Start to begin.
func NewManifestWatcher(path string, load ManifestLoader, a *Agent) (*ManifestWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &ManifestWatcher{
		path:     abs,
		load:     load,
		agent:    a,
		watcher:  w,
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory holding the config file, which survives
// editors that replace the file on save.
func (mw *ManifestWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(mw.path)
	if err := mw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}
	slog.Info("watching manifest", "config_path", mw.path)
	go mw.loop(ctx)
	return nil
}

// Stop ends the watch loop and closes the underlying watcher.
func (mw *ManifestWatcher) Stop() {
	mw.stopOnce.Do(func() {
		close(mw.done)
		if err := mw.watcher.Close(); err != nil {
			slog.Debug("close manifest watcher", "error", err)
		}
	})
}

func (mw *ManifestWatcher) loop(ctx context.Context) {
	base := filepath.Base(mw.path)
	var timer *time.Timer
	defer func() {
		mw.mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mw.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-mw.done:
			return
		case ev, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			mw.mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(mw.debounce, func() { mw.reload(ctx) })
			mw.mu.Unlock()
		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("manifest watcher error", "error", err)
		}
	}
}

func (mw *ManifestWatcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	m, err := mw.load()
	if err != nil {
		slog.Warn("reload manifest", "error", err)
		return
	}
	if err := mw.agent.Install(ctx, m); err != nil {
		slog.Warn("install reloaded manifest", "generation", m.CacheName(), "error", err)
	}
}
