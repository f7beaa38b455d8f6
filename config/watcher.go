package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kfiore/perfpulse/logging"
)

// Watcher watches a configuration file and reloads it on change, so
// optimizer thresholds can be tuned without a restart.
type Watcher struct {
	path     string
	onChange func(*Config)
	watcher  *fsnotify.Watcher

	mu      sync.RWMutex
	current *Config

	stopCh   chan struct{}
	stopOnce sync.Once
	debounce time.Duration
}

// NewWatcher creates a watcher for path. onChange runs with the freshly
// loaded configuration after every successful reload.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     os.ExpandEnv(path),
		onChange: onChange,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		debounce: 500 * time.Millisecond,
	}, nil
}

// Start loads the initial configuration and begins watching. Watching the
// directory rather than the file survives editors that replace-on-save.
func (w *Watcher) Start() error {
	cfg, err := Load(w.path, nil)
	if err != nil {
		return fmt.Errorf("failed to load initial configuration: %w", err)
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	go w.processEvents()
	return nil
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
	})
	return err
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) processEvents() {
	var timer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce bursts of events from a single save
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.LogWarnf("config watcher error: %v", err)
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path, nil)
	if err != nil {
		logging.LogWarnf("config reload failed, keeping previous configuration: %v", err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	logging.LogInfof("configuration reloaded from %s", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
