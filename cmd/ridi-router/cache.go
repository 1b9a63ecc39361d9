// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomsjansons/ridi-router/internal/graphcache"
	"github.com/tomsjansons/ridi-router/internal/ingestion"
)

func newCacheCmd(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Build or inspect the on-disk graph cache",
	}
	cmd.AddCommand(newCacheBuildCmd(global))
	cmd.AddCommand(newCacheInspectCmd(global))
	return cmd
}

func newCacheBuildCmd(global *globalFlags) *cobra.Command {
	var osmFile string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Ingest an OSM JSON extract and write a graph cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			shutdown, err := setupTelemetry(cfg)
			if err != nil {
				return err
			}
			defer shutdown(cmd.Context())

			if osmFile == "" {
				return fmt.Errorf("cache build: --osm-file is required")
			}
			f, err := os.Open(osmFile)
			if err != nil {
				return fmt.Errorf("cache build: open %s: %w", osmFile, err)
			}
			defer f.Close()

			source := ingestion.NewJSONSource(f, slog.Default())
			graph, err := ingestion.Load(cmd.Context(), source, slog.Default())
			if err != nil {
				return fmt.Errorf("cache build: ingest %s: %w", osmFile, err)
			}

			cache := graphcache.New(cfg.CacheDir)
			if !cache.Enabled() {
				return fmt.Errorf("cache build: no cache directory configured")
			}
			if err := cache.Write(cmd.Context(), graph); err != nil {
				return fmt.Errorf("cache build: write %s: %w", cfg.CacheDir, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote graph cache to %s (%d points, %d lines)\n",
				cfg.CacheDir, graph.NumPoints(), graph.NumLines())
			return nil
		},
	}
	cmd.Flags().StringVar(&osmFile, "osm-file", "", "path to an OSM JSON extract")
	return cmd
}

func newCacheInspectCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report point/line counts for the configured graph cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			cache := graphcache.New(cfg.CacheDir)
			if !cache.Enabled() {
				return fmt.Errorf("cache inspect: no cache directory configured")
			}
			graph, err := cache.Read(cmd.Context())
			if err != nil {
				return fmt.Errorf("cache inspect: read %s: %w", cfg.CacheDir, err)
			}
			if graph == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "no graph cached under %s\n", cfg.CacheDir)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d points, %d lines\n", cfg.CacheDir, graph.NumPoints(), graph.NumLines())
			return nil
		},
	}
}
