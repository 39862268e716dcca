package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/lodforge/meshgrid/engine/core"
)

// Config is the TOML-backed build/selection configuration for one grid.
type Config struct {
	Base struct {
		X, Y, Z float32
	} `toml:"base"`
	Step         float32 `toml:"step"`
	Levels       int     `toml:"levels"`
	ErrTol       float32 `toml:"err_tol"`
	WorkerCount  int     `toml:"worker_count"`
	DefaultKappa float32 `toml:"default_kappa"`
	ContinuousLOD bool   `toml:"continuous_lod"`
	FrustumCull  bool    `toml:"frustum_cull"`
}

// Default returns a Config with the values a small, single-workstation
// build should start from.
func Default() Config {
	c := Config{
		Step:          1,
		Levels:        8,
		ErrTol:        0.01,
		WorkerCount:   4,
		DefaultKappa:  1,
		ContinuousLOD: true,
		FrustumCull:   true,
	}
	return c
}

// Validate reports the same constraints NewMeshGrid enforces, plus
// bounds on the ambient fields TOML alone can't check.
func (c Config) Validate() error {
	if c.Step <= 0 {
		return errors.New("config: step must be > 0")
	}
	if c.Levels < 1 {
		return errors.New("config: levels must be >= 1")
	}
	// NaN fails the comparison and an infinity gives NaN when subtracted
	// from itself, so both are rejected along with negative values.
	if !(c.ErrTol >= 0) || c.ErrTol-c.ErrTol != 0 {
		return errors.New("config: err_tol must be finite and >= 0")
	}
	if c.WorkerCount < 1 {
		return errors.New("config: worker_count must be >= 1")
	}
	if c.DefaultKappa <= 0 {
		return errors.New("config: default_kappa must be > 0")
	}
	return nil
}

// Load reads and parses a TOML config file, applying Default() first so
// unset fields keep sane values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watcher reloads a config file whenever it changes on disk and hands
// the new value to a callback. Only the single config file is watched.
type Watcher struct {
	path     string
	onChange func(Config)

	mu       sync.RWMutex
	current  Config
	fsnotify *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher loads path once and starts watching it for further writes.
// onChange is invoked (from the watcher's own goroutine) after every
// successful reload.
func NewWatcher(path string, onChange func(Config)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(path); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		current:  cfg,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops the watch goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsnotify.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				core.LogError("config reload failed: %s", err.Error())
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("config watch error: %s", err.Error())
		case <-w.done:
			return
		}
	}
}
