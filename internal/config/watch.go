package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"strikebot/internal/logger"
)

// ChangeListener receives every successfully reloaded configuration.
type ChangeListener func(*Config)

// Watcher reloads the config when its file or any file it includes changes. A
// reload that fails to parse or validate is logged and the previous
// configuration stays current.
type Watcher struct {
	path     string
	debounce time.Duration
	// files is the root plus its resolved includes; only Run touches it.
	files map[string]bool

	mu        sync.RWMutex
	current   *Config
	version   int64
	listeners []ChangeListener
}

func NewWatcher(path string, initial *Config) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if initial == nil {
		if initial, err = Load(abs); err != nil {
			return nil, err
		}
	}
	return &Watcher{path: abs, debounce: 300 * time.Millisecond, current: initial, version: 1}, nil
}

func (w *Watcher) Current() (*Config, int64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current, w.version
}

func (w *Watcher) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Run watches the directories of the config file and its includes until ctx
// ends. Editors that replace the file on save are handled by watching the
// directory. The include set is re-resolved after every change, so a newly
// added include is picked up too.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer fw.Close()
	dirs := make(map[string]bool)
	if err := w.track(fw, dirs); err != nil {
		if w.files == nil {
			return fmt.Errorf("config watcher: %w", err)
		}
		logger.Warnf("config watcher: %v", err)
	}
	logger.Infof("config watcher: watching %s (%d files)", w.path, len(w.files))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(evt.Name)] || !evt.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("config watcher: %v", err)
		case <-fire:
			fire = nil
			w.Reload()
			if err := w.track(fw, dirs); err != nil {
				logger.Warnf("config watcher: %v", err)
			}
		}
	}
}

// track resolves the include set and adds any directory not yet watched. When
// the includes cannot be resolved the previous set is kept.
func (w *Watcher) track(fw *fsnotify.Watcher, dirs map[string]bool) error {
	files, err := resolveConfigIncludes(w.path)
	if err != nil {
		if w.files == nil {
			w.files = map[string]bool{w.path: true}
			if addErr := fw.Add(filepath.Dir(w.path)); addErr != nil {
				return addErr
			}
			dirs[filepath.Dir(w.path)] = true
		}
		return err
	}
	set := make(map[string]bool, len(files))
	for _, f := range files {
		f = filepath.Clean(f)
		set[f] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}
	w.files = set
	return nil
}

// Reload re-reads the file and notifies listeners on success.
func (w *Watcher) Reload() bool {
	cfg, err := Load(w.path)
	if err != nil {
		logger.Errorf("config reload failed (%s): %v", filepath.Base(w.path), err)
		return false
	}
	w.mu.Lock()
	w.current = cfg
	w.version++
	version := w.version
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mu.Unlock()
	logger.Infof("config reloaded from %s (version %d)", filepath.Base(w.path), version)
	for _, fn := range listeners {
		func(cb ChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("config listener panic: %v", r)
				}
			}()
			cb(cfg)
		}(fn)
	}
	return true
}
