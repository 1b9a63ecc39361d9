// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomsjansons/ridi-router/internal/appconfig"
	"github.com/tomsjansons/ridi-router/internal/generator"
	"github.com/tomsjansons/ridi-router/internal/graphcache"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/resultcache"
	"github.com/tomsjansons/ridi-router/internal/routeio"
	"github.com/tomsjansons/ridi-router/internal/rules"
	"github.com/tomsjansons/ridi-router/internal/tui"
)

type routeFlags struct {
	start            string
	finish           string
	waypoints        []string
	loopBearing      float64
	loopDistanceM    float64
	rulesPath        string
	out              string
	format           string
	interactive      bool
	avoidResidential bool
	noResultCache    bool
}

func newRouteCmd(global *globalFlags) *cobra.Command {
	flags := &routeFlags{}

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Generate candidate routes between two points, or a round trip from one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cmd, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.start, "start", "", "start point as lat,lon")
	cmd.Flags().StringVar(&flags.finish, "finish", "", "finish point as lat,lon (mutually exclusive with --loop-bearing)")
	cmd.Flags().StringArrayVar(&flags.waypoints, "waypoint", nil, "an intermediate point as lat,lon; repeatable")
	cmd.Flags().Float64Var(&flags.loopBearing, "loop-bearing", 0, "round-trip heading in degrees")
	cmd.Flags().Float64Var(&flags.loopDistanceM, "loop-distance-m", 0, "round-trip total distance in meters")
	cmd.Flags().StringVar(&flags.rulesPath, "rules", "", "rules JSON file (reads stdin if omitted and not a terminal)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output file path")
	cmd.Flags().StringVar(&flags.format, "format", "gpx", "output format: gpx, csv, or json")
	cmd.Flags().BoolVar(&flags.interactive, "interactive", false, "prompt for missing fields and pick among candidates")
	cmd.Flags().BoolVar(&flags.avoidResidential, "avoid-residential-proximity", false, "avoid endpoints close to residential areas")
	cmd.Flags().BoolVar(&flags.noResultCache, "no-result-cache", false, "skip the result cache for this run")

	return cmd
}

func parseLatLon(s string) (lat, lon float64, err error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lat,lon, got %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	return lat, lon, nil
}

func runRoute(cmd *cobra.Command, global *globalFlags, flags *routeFlags) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	shutdown, err := setupTelemetry(cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	if flags.interactive && flags.start == "" {
		req, err := tui.PromptRouteRequest()
		if err != nil {
			return err
		}
		flags.start = req.StartLat + "," + req.StartLon
		if req.RoundTrip {
			bearing, _ := strconv.ParseFloat(req.RoundTripBearingDeg, 64)
			distance, _ := strconv.ParseFloat(req.RoundTripDistanceM, 64)
			flags.loopBearing = bearing
			flags.loopDistanceM = distance
		} else {
			flags.finish = req.FinishLat + "," + req.FinishLon
		}
		flags.rulesPath = req.RulesPath
		flags.out = req.OutPath
		flags.format = req.Format
	}

	if flags.start == "" {
		return fmt.Errorf("route: --start is required")
	}
	if flags.out == "" {
		return fmt.Errorf("route: --out is required")
	}

	cache := graphcache.New(cfg.CacheDir)
	if !cache.Enabled() {
		return fmt.Errorf("route: no cache directory configured")
	}
	graph, err := cache.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("route: read graph cache: %w", err)
	}
	if graph == nil {
		return fmt.Errorf("route: no graph cached under %s; run 'ridi-router cache build' first", cfg.CacheDir)
	}

	router, err := rules.Read(flags.rulesPath)
	if err != nil {
		return fmt.Errorf("route: read rules: %w", err)
	}

	startLat, startLon, err := parseLatLon(flags.start)
	if err != nil {
		return fmt.Errorf("route: --start: %w", err)
	}
	start, ok, err := graph.GetClosestToCoords(startLat, startLon, router, flags.avoidResidential)
	if err != nil || !ok {
		return fmt.Errorf("route: no routable point near start %s", flags.start)
	}

	var (
		finish    mapdata.PointRef
		roundTrip *generator.RoundTrip
	)
	switch {
	case flags.finish != "":
		finishLat, finishLon, err := parseLatLon(flags.finish)
		if err != nil {
			return fmt.Errorf("route: --finish: %w", err)
		}
		finish, ok, err = graph.GetClosestToCoords(finishLat, finishLon, router, flags.avoidResidential)
		if err != nil || !ok {
			return fmt.Errorf("route: no routable point near finish %s", flags.finish)
		}
	case flags.loopDistanceM > 0:
		finish = start
		roundTrip = &generator.RoundTrip{BearingDeg: flags.loopBearing, TotalDistanceM: flags.loopDistanceM}
	default:
		return fmt.Errorf("route: either --finish or --loop-bearing/--loop-distance-m is required")
	}

	var waypoints []mapdata.PointRef
	for _, wp := range flags.waypoints {
		lat, lon, err := parseLatLon(wp)
		if err != nil {
			return fmt.Errorf("route: --waypoint %q: %w", wp, err)
		}
		ref, ok, err := graph.GetClosestToCoords(lat, lon, router, flags.avoidResidential)
		if err != nil || !ok {
			return fmt.Errorf("route: no routable point near waypoint %s", wp)
		}
		waypoints = append(waypoints, ref)
	}

	gen := generator.New(graph, start, finish, roundTrip, router, flags.avoidResidential)
	gen.Waypoints = waypoints

	routes, err := loadOrGenerateRoutes(cmd.Context(), cfg, graph, gen, start, finish, roundTrip, router, flags.noResultCache)
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		return fmt.Errorf("route: no routes found")
	}

	if flags.interactive {
		idx, err := tui.PickRoute(routes)
		if err != nil {
			return err
		}
		routes = routes[idx : idx+1]
	}

	out := make([]routeio.Route, len(routes))
	for i, r := range routes {
		out[i] = routeio.Route{
			ID:     strconv.Itoa(i + 1),
			Stats:  r.Stats,
			Coords: routeio.Coords(graph, start, r.Route),
		}
	}

	f, err := os.Create(flags.out)
	if err != nil {
		return fmt.Errorf("route: open output %s: %w", flags.out, err)
	}
	defer f.Close()

	if err := routeio.WriteBatch(f, out, routeio.Format(flags.format)); err != nil {
		return fmt.Errorf("route: write %s: %w", flags.out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d route(s) to %s\n", len(out), flags.out)
	return nil
}

// loadOrGenerateRoutes checks the result cache before paying for a full
// GenerateRoutes call, and populates the cache on a miss.
func loadOrGenerateRoutes(
	ctx context.Context,
	cfg appconfig.Config,
	graph *mapdata.Graph,
	gen *generator.Generator,
	start, finish mapdata.PointRef,
	roundTrip *generator.RoundTrip,
	router rules.Router,
	skipCache bool,
) ([]generator.RouteWithStats, error) {
	if skipCache {
		return gen.GenerateRoutes(ctx)
	}

	store, err := resultcache.Open(cfg.ResultCachePath, cfg.ResultCacheTTL)
	if err != nil {
		return gen.GenerateRoutes(ctx)
	}
	defer store.Close()

	hash := rulesHash(router)
	var sig resultcache.Signature
	if roundTrip != nil {
		sig = resultcache.SignatureForRoundTrip(graph, start, roundTrip.BearingDeg, roundTrip.TotalDistanceM, hash)
	} else {
		sig = resultcache.SignatureFor(graph, start, finish, hash)
	}

	if cached, err := store.Load(ctx, sig); err == nil && cached != nil {
		return cached, nil
	}

	routes, err := gen.GenerateRoutes(ctx)
	if err != nil {
		return nil, err
	}
	_ = store.Save(ctx, sig, routes)
	return routes, nil
}

func rulesHash(router rules.Router) string {
	data, err := gojson.Marshal(router)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
