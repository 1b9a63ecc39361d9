// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package appconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/appconfig"
)

func TestDefaultParsesEmbeddedConfig(t *testing.T) {
	cfg, err := appconfig.Default()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8090", cfg.DebugViewerAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.ResultCacheTTL)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	cfg, err := appconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8090", cfg.DebugViewerAddress)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: chatty\n"), 0o644))

	_, err := appconfig.Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := appconfig.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchFilePicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	changed := make(chan appconfig.Config, 1)
	w, err := appconfig.WatchFile(path, func(cfg appconfig.Config) { changed <- cfg })
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "info", w.Current().LogLevel)

	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "warn", cfg.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
