// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tomsjansons/ridi-router/internal/appconfig"
	"github.com/tomsjansons/ridi-router/internal/telemetry"
)

// globalFlags holds the flag values shared by every subcommand.
type globalFlags struct {
	configPath string
	cacheDir   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "ridi-router",
		Short:         "Generate motorcycle-friendly routes from an OSM road graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to appconfig YAML (defaults to the embedded config)")
	root.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "", "overrides the graph cache directory from config")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "overrides the log level from config (debug, info, warn, error)")

	root.AddCommand(newRouteCmd(flags))
	root.AddCommand(newCacheCmd(flags))
	root.AddCommand(newServeCmd(flags))

	return root
}

// loadConfig resolves the ambient config, layering CLI flag overrides
// on top of the file (or embedded default) config.
func loadConfig(flags *globalFlags) (appconfig.Config, error) {
	cfg, err := appconfig.Default()
	if flags.configPath != "" {
		cfg, err = appconfig.Load(flags.configPath)
	}
	if err != nil {
		return appconfig.Config{}, fmt.Errorf("load config: %w", err)
	}
	if flags.cacheDir != "" {
		cfg.CacheDir = flags.cacheDir
		cfg.ResultCachePath = flags.cacheDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupTelemetry loads cfg's logging/tracing knobs and returns a
// shutdown func the caller must defer, e.g.
// defer shutdown(context.Background()).
func setupTelemetry(cfg appconfig.Config) (shutdown func(context.Context) error, err error) {
	shutdown, err = telemetry.Setup(parseLogLevel(cfg.LogLevel), cfg.OtelExporter)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}
	return shutdown, nil
}
