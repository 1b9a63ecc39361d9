// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package appconfig holds the ambient service configuration the CLI
// and the debug viewer run against: where the graph and result caches
// live, which addresses to serve on, and how verbosely to log. This is
// distinct from internal/rules, which governs routing behavior itself
// and is user-supplied per request.
package appconfig

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Config is the ambient service configuration.
type Config struct {
	CacheDir           string        `yaml:"cache_dir" validate:"required"`
	DebugViewerAddress string        `yaml:"debug_viewer_address" validate:"required,hostname_port"`
	PrometheusAddress  string        `yaml:"prometheus_address" validate:"required,hostname_port"`
	OtelExporter       string        `yaml:"otel_exporter" validate:"required,oneof=stdout none"`
	LogLevel           string        `yaml:"log_level" validate:"required,oneof=debug info warn error"`
	ResultCachePath    string        `yaml:"result_cache_path" validate:"required"`
	ResultCacheTTL     time.Duration `yaml:"result_cache_ttl" validate:"gt=0"`
}

var validate = validator.New()

// defaults seeds a Config with the same values as default_config.yaml,
// so a partial user file only needs to specify what it overrides.
func defaults() Config {
	return Config{
		CacheDir:           "~/.ridi-router/cache",
		DebugViewerAddress: "127.0.0.1:8090",
		PrometheusAddress:  "127.0.0.1:9090",
		OtelExporter:       "stdout",
		LogLevel:           "info",
		ResultCachePath:    "~/.ridi-router/cache/routes",
		ResultCacheTTL:     7 * 24 * time.Hour,
	}
}

// Default returns the configuration embedded at build time.
func Default() (Config, error) {
	return parse(defaultConfigYAML)
}

// Load reads and validates a Config from path, expanding a leading "~"
// to the user's home directory in path-like fields.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("appconfig: read %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("appconfig: parse yaml: %w", err)
	}
	cfg.CacheDir = expandHome(cfg.CacheDir)
	cfg.ResultCachePath = expandHome(cfg.ResultCachePath)
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("appconfig: validate: %w", err)
	}
	return cfg, nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Watcher re-parses the config file at path whenever it changes on
// disk, handing each successfully validated Config to onChange. Parse
// errors are dropped with the previous Config left in place, so a
// transient editor save (truncate-then-write) can never crash a
// running server.
type Watcher struct {
	mu       sync.RWMutex
	current  Config
	path     string
	fsw      *fsnotify.Watcher
	onChange func(Config)
}

// WatchFile loads path once, then watches it for further edits.
func WatchFile(path string, onChange func(Config)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("appconfig: new watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("appconfig: watch %s: %w", path, err)
	}

	w := &Watcher{current: cfg, path: path, fsw: fsw, onChange: onChange}
	go w.loop()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching for further changes.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
