// Package config provides configuration watching and hot-reload functionality.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigChangeCallback is invoked when the watched configuration file
// reloads successfully.
type ConfigChangeCallback func(oldConfig, newConfig *Config)

// Watcher watches a configuration file for changes and hot-reloads it.
type Watcher struct {
	configFile string
	loader     *Loader

	config   *Config
	configMu sync.RWMutex

	fsWatcher *fsnotify.Watcher

	callbacks   []ConfigChangeCallback
	callbacksMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *slog.Logger
}

// NewWatcher loads configFile once and prepares to watch it for further
// changes.
func NewWatcher(configFile string, loader *Loader) (*Watcher, error) {
	ext := filepath.Ext(configFile)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		configFile: configFile,
		loader:     loader,
		fsWatcher:  fsWatcher,
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default(),
	}

	cfg, err := loader.LoadFromFile(configFile)
	if err != nil {
		fsWatcher.Close()
		cancel()
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	w.config = cfg
	return w, nil
}

// SetLogger overrides the watcher's logger.
func (w *Watcher) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Start begins watching the configuration file on a background goroutine.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.configFile); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWatchError, err)
	}
	w.wg.Add(1)
	go w.watchLoop()
	return nil
}

// Stop cancels the watch loop and waits for it to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// GetConfig returns the most recently loaded configuration.
func (w *Watcher) GetConfig() *Config {
	w.configMu.RLock()
	defer w.configMu.RUnlock()
	return w.config
}

// OnConfigChange registers a callback fired after every successful reload.
func (w *Watcher) OnConfigChange(callback ConfigChangeCallback) {
	w.callbacksMu.Lock()
	defer w.callbacksMu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Reload forces an immediate reload.
func (w *Watcher) Reload() error {
	return w.reloadConfig()
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	var debounce *time.Timer
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case <-w.ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != w.configFile {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, func() {
					if err := w.reloadConfig(); err != nil {
						w.logger.Error("config reload failed", "error", err)
					}
				})
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.logger.Warn("config file removed or renamed", "path", w.configFile)
				time.AfterFunc(time.Second, func() {
					_ = w.fsWatcher.Add(w.configFile)
				})
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadConfig() error {
	newConfig, err := w.loader.LoadFromFile(w.configFile)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	w.configMu.Lock()
	oldConfig := w.config
	w.config = newConfig
	w.configMu.Unlock()

	w.notifyCallbacks(oldConfig, newConfig)
	w.logger.Info("configuration reloaded", "path", w.configFile)
	return nil
}

func (w *Watcher) notifyCallbacks(oldConfig, newConfig *Config) {
	w.callbacksMu.RLock()
	callbacks := make([]ConfigChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.callbacksMu.RUnlock()

	for _, cb := range callbacks {
		go func(cb ConfigChangeCallback) {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("config change callback panicked", "panic", r)
				}
			}()
			cb(oldConfig, newConfig)
		}(cb)
	}
}
