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
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tomsjansons/ridi-router/internal/debugviewer"
	"github.com/tomsjansons/ridi-router/internal/graphcache"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
)

// shutdownGrace bounds how long in-flight requests get to finish once
// a termination signal arrives.
const shutdownGrace = 10 * time.Second

// graphHolder satisfies debugviewer.GraphProvider over a graph loaded
// once at startup; ridi-router has no hot-reload path for the cache
// directory today.
type graphHolder struct {
	mu    sync.RWMutex
	graph *mapdata.Graph
}

func (h *graphHolder) Graph() *mapdata.Graph {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.graph
}

func newServeCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the debug viewer (and Prometheus metrics) HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global)
		},
	}
}

func runServe(cmd *cobra.Command, global *globalFlags) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	shutdown, err := setupTelemetry(cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	cache := graphcache.New(cfg.CacheDir)
	graph, err := cache.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("serve: read graph cache: %w", err)
	}
	if graph == nil {
		slog.Warn("serve: no graph cached yet; /debug/runs will reject requests until one is built",
			"cache_dir", cfg.CacheDir)
	}
	holder := &graphHolder{graph: graph}

	debugSrv := debugviewer.NewServer(holder, slog.Default())

	metricsEngine := gin.New()
	metricsEngine.Use(gin.Recovery())
	metricsEngine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpDebug := &http.Server{Addr: cfg.DebugViewerAddress, Handler: debugSrv.Engine()}
	httpMetrics := &http.Server{Addr: cfg.PrometheusAddress, Handler: metricsEngine}

	errs := make(chan error, 2)
	go func() {
		slog.Info("debug viewer listening", "address", cfg.DebugViewerAddress)
		if err := httpDebug.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- fmt.Errorf("debug viewer: %w", err)
		}
	}()
	go func() {
		slog.Info("metrics listening", "address", cfg.PrometheusAddress)
		if err := httpMetrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- fmt.Errorf("metrics: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-errs:
		slog.Error("server failed", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = httpDebug.Shutdown(ctx)
	_ = httpMetrics.Shutdown(ctx)
	return nil
}
